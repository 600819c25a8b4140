package pipeline

import "sync"

const (
	StepStarted    = "started"
	StepAnalyzing  = "analyzing_request"
	StepGenerating = "generating_response"
	StepCompleted  = "completed"
	StepError      = "error"
)

// Snapshot is the latest recorded state of one pipeline run. Clients poll it
// while the run is in flight; it is the only way a run's outcome is exposed.
type Snapshot struct {
	Step             string `json:"step"`
	AnalysisPrompt   string `json:"analysis_prompt"`
	AnalysisResponse string `json:"analysis_response"`
	FinalPrompt      string `json:"final_prompt"`
	FinalResponse    string `json:"final_response"`
	Error            string `json:"error"`
}

// DebugLog holds run snapshots for the lifetime of the process. Runs are
// keyed per (post, bot) pair; the log also remembers which run last touched
// each post so lookups by post id return the freshest snapshot.
type DebugLog struct {
	mu     sync.RWMutex
	runs   map[string]Snapshot
	latest map[string]string
}

func NewDebugLog() *DebugLog {
	return &DebugLog{
		runs:   map[string]Snapshot{},
		latest: map[string]string{},
	}
}

func runKey(postId string, botName string) string {
	return postId + "_" + botName
}

// Start resets the run's snapshot to the started step.
func (d *DebugLog) Start(postId string, botName string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := runKey(postId, botName)
	d.runs[key] = Snapshot{Step: StepStarted}
	d.latest[postId] = key
}

// Record applies an update to the run's snapshot.
func (d *DebugLog) Record(postId string, botName string, update func(*Snapshot)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := runKey(postId, botName)
	snapshot := d.runs[key]
	update(&snapshot)
	d.runs[key] = snapshot
	d.latest[postId] = key
}

// Latest returns the most recently touched snapshot for a post.
func (d *DebugLog) Latest(postId string) (Snapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	key, ok := d.latest[postId]
	if !ok {
		return Snapshot{}, false
	}
	snapshot, ok := d.runs[key]
	return snapshot, ok
}

// Get returns the snapshot for one (post, bot) run.
func (d *DebugLog) Get(postId string, botName string) (Snapshot, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snapshot, ok := d.runs[runKey(postId, botName)]
	return snapshot, ok
}
