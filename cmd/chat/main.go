package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"reverselearn/internal/client"
	"reverselearn/internal/model"
	"reverselearn/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	baseURL := os.Getenv("API_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	api := client.New(baseURL)
	reader := bufio.NewReader(os.Stdin)

	credsPath, err := client.DefaultCredentialsPath()
	if err != nil {
		log.Fatal("cannot resolve credentials path:", err)
	}

	creds, err := client.LoadCredentials(credsPath)
	if err != nil {
		log.Fatal("cannot read credentials:", err)
	}
	if creds.Token == "" {
		creds = signIn(api, reader, credsPath)
	} else {
		api.SetToken(creds.Token)
		color.New(color.FgGreen).Printf("Signed in as %s\n", creds.Email)
	}

	level := chooseLevel(reader)
	mode := chooseMode(reader)

	sess := session.New(level, mode, api, api)
	printGreeting(sess)

	runREPL(api, sess, reader, credsPath, creds)
}

func signIn(api *client.Client, reader *bufio.Reader, credsPath string) client.Credentials {
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed, color.Bold)

	for {
		yellow.Println("\n[1] Sign in  [2] Create account")
		choice := readLine(reader, "> ")

		email := readLine(reader, "Email: ")
		password := readLine(reader, "Password: ")
		ctx := context.Background()

		if choice == "2" {
			msg, err := api.Signup(ctx, email, password)
			if err != nil {
				red.Println("✗", err)
				continue
			}
			color.New(color.FgGreen).Println(msg)
		}

		resp, err := api.Login(ctx, email, password)
		if err != nil {
			red.Println("✗", err)
			continue
		}

		creds := client.Credentials{Token: resp.Token, Email: email}
		if err := client.SaveCredentials(credsPath, creds); err != nil {
			log.Println("could not persist credentials:", err)
		}
		api.SetToken(resp.Token)
		color.New(color.FgGreen).Println(resp.Message)
		return creds
	}
}

func chooseLevel(reader *bufio.Reader) model.AudienceLevel {
	color.New(color.FgYellow).Println("\nAudience level: [1] Beginner  [2] Intermediate  [3] Expert")
	switch readLine(reader, "> ") {
	case "2":
		return model.LevelIntermediate
	case "3":
		return model.LevelExpert
	default:
		return model.LevelBeginner
	}
}

func chooseMode(reader *bufio.Reader) model.Mode {
	color.New(color.FgYellow).Println("Mode: [1] Explain  [2] Presentation")
	if readLine(reader, "> ") == "2" {
		return model.ModePresentation
	}
	return model.ModeExplain
}

func runREPL(api *client.Client, sess *session.Session, reader *bufio.Reader, credsPath string, creds client.Credentials) {
	blue := color.New(color.FgCyan)
	blue.Println("\nCommands: /save  /chats  /delete <id>  /reset  /signout  /quit")

	for {
		text := readLine(reader, "\nyou > ")
		ctx := context.Background()

		switch {
		case text == "/quit":
			return

		case text == "/save":
			id, err := api.SaveChat(ctx, sess.ID(), sess.Messages())
			if err != nil {
				color.New(color.FgRed).Println("✗", err)
				continue
			}
			color.New(color.FgGreen).Println("Saved chat", id)

		case text == "/chats":
			chats, err := api.ListChats(ctx)
			if err != nil {
				color.New(color.FgRed).Println("✗", err)
				continue
			}
			for _, c := range chats {
				fmt.Printf("  %s  %s  (%s)\n", c.ID, c.Title, c.Timestamp.Format("2006-01-02 15:04"))
			}

		case strings.HasPrefix(text, "/delete "):
			if err := api.DeleteChat(ctx, strings.TrimSpace(strings.TrimPrefix(text, "/delete "))); err != nil {
				color.New(color.FgRed).Println("✗", err)
				continue
			}
			color.New(color.FgGreen).Println("Chat deleted")

		case text == "/reset":
			sess.Reset(sess.Level(), sess.Mode())
			printGreeting(sess)

		case text == "/signout":
			if err := client.ClearCredentials(credsPath); err != nil {
				log.Println("could not clear credentials:", err)
			}
			color.New(color.FgGreen).Printf("Signed out %s\n", creds.Email)
			return

		default:
			ai, err := sess.Send(ctx, text)
			if err != nil {
				color.New(color.FgRed).Println("✗", err)
				continue
			}
			if ai == nil {
				continue
			}
			printAIMessage(sess, ai)
		}
	}
}

func printGreeting(sess *session.Session) {
	msgs := sess.Messages()
	if len(msgs) > 0 {
		color.New(color.FgMagenta, color.Bold).Print("ai  > ")
		fmt.Println(msgs[0].Content)
	}
}

func printAIMessage(sess *session.Session, msg *model.Message) {
	color.New(color.FgMagenta, color.Bold).Print("ai  > ")
	fmt.Println(msg.Content)

	// Feedback panels render only in Presentation mode
	if sess.Mode() != model.ModePresentation || msg.Feedback == nil || !sess.IsExpanded(msg.ID) {
		return
	}

	fb := msg.Feedback
	label := color.New(color.FgCyan, color.Bold)
	if fb.Clarity != "" {
		label.Print("  clarity: ")
		fmt.Println(fb.Clarity)
	}
	if fb.Pacing != "" {
		label.Print("  pacing:  ")
		fmt.Println(fb.Pacing)
	}
	printList(label, "structure", fb.StructureSuggestions)
	printList(label, "delivery", fb.DeliveryTips)
	printList(label, "questions", fb.Questions)
	for _, r := range fb.RephrasingSuggestions {
		label.Println("  rephrase:")
		fmt.Printf("    was: %s\n    try: %s\n", r.Original, r.Suggested)
	}
}

func printList(label *color.Color, name string, items []string) {
	if len(items) == 0 {
		return
	}
	label.Printf("  %s:\n", name)
	for _, item := range items {
		fmt.Println("    -", item)
	}
}

func readLine(reader *bufio.Reader, prompt string) string {
	color.New(color.FgGreen).Print(prompt)
	line, err := reader.ReadString('\n')
	if err != nil {
		os.Exit(0)
	}
	return strings.TrimSpace(line)
}
