package telemetry

import "sync"

// Frame is one sampled set of pose landmarks from the presenter's camera.
// Coordinates are normalized to [0,1] with y growing downward.
type Frame struct {
	PoseDetected   bool    `json:"poseDetected"`
	LeftShoulderY  float64 `json:"leftShoulderY"`
	RightShoulderY float64 `json:"rightShoulderY"`
	NoseY          float64 `json:"noseY"`
	HandDetected   bool    `json:"handDetected"`
}

// Report is one window's worth of coaching metrics
type Report struct {
	PostureScore    int      `json:"postureScore"`    // 0-100, fraction of frames with level shoulders
	HandGestureRate int      `json:"handGestureRate"` // gestures per minute
	HeadNodCount    int      `json:"headNodCount"`    // nods per minute
	Suggestions     []string `json:"suggestions"`
}

const (
	// DefaultWindow is how many frames are accumulated per report
	DefaultWindow = 30

	// sampleRate is the assumed camera frame rate for per-minute conversion
	sampleRate = 30

	shoulderTolerance = 0.02
	nodThreshold      = 0.03
)

// Suggestions is the fixed coaching advice attached to every report
var Suggestions = []string{
	"Keep your shoulders level to appear more confident.",
	"Use deliberate hand gestures, aiming for about 10-15 per minute.",
	"Avoid excessive head nodding; it can distract your audience.",
}

// Tracker accumulates posture, gesture and nod counters over a frame window.
// Counters reset after every report; nod tracking carries across windows.
type Tracker struct {
	mu sync.Mutex

	window   int
	frames   int
	upright  int
	nods     int
	gestures int

	lastNoseY    float64
	haveLastNose bool
}

// NewTracker creates a tracker reporting every window frames. window <= 0
// uses DefaultWindow.
func NewTracker(window int) *Tracker {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Tracker{window: window}
}

// Observe records one frame. When the window fills, the report for that
// window is returned and the counters reset.
func (t *Tracker) Observe(f Frame) (Report, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.frames++
	if f.PoseDetected {
		if abs(f.LeftShoulderY-f.RightShoulderY) < shoulderTolerance {
			t.upright++
		}
		if t.haveLastNose && (t.lastNoseY-f.NoseY) > nodThreshold {
			t.nods++
		}
		t.lastNoseY = f.NoseY
		t.haveLastNose = true
	}
	if f.HandDetected {
		t.gestures++
	}

	if t.frames >= t.window {
		return t.flushLocked(), true
	}
	return Report{}, false
}

// Flush returns the report for the frames seen so far and resets counters
func (t *Tracker) Flush() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.flushLocked()
}

func (t *Tracker) flushLocked() Report {
	fc := t.frames
	if fc == 0 {
		fc = 1
	}
	r := Report{
		PostureScore:    t.upright * 100 / fc,
		HandGestureRate: t.gestures * sampleRate * 60 / fc,
		HeadNodCount:    t.nods * sampleRate * 60 / fc,
		Suggestions:     Suggestions,
	}
	t.frames = 0
	t.upright = 0
	t.nods = 0
	t.gestures = 0
	return r
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
