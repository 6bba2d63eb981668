package preview

import (
	"sync"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
)

// buildStatus tracks the latest build for the status endpoint and error page.
type buildStatus struct {
	mu           sync.RWMutex
	lastBuildID  string
	lastStatus   build.BuildStatus
	lastError    error
	lastFinished time.Time
	builds       int
	hasGoodBuild bool
}

func (bs *buildStatus) record(res *build.BuildResult, err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.builds++
	bs.lastError = err
	bs.lastFinished = time.Now()
	if res != nil {
		bs.lastBuildID = res.BuildID
		bs.lastStatus = res.Status
		if res.Status.IsSuccess() {
			bs.hasGoodBuild = true
		}
	}
}

// StatusSnapshot is the JSON body of the status endpoint.
type StatusSnapshot struct {
	BuildID      string    `json:"build_id,omitempty"`
	Status       string    `json:"status,omitempty"`
	Error        string    `json:"error,omitempty"`
	Finished     time.Time `json:"finished,omitzero"`
	Builds       int       `json:"builds"`
	HasGoodBuild bool      `json:"has_good_build"`
}

func (bs *buildStatus) snapshot() StatusSnapshot {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	s := StatusSnapshot{
		BuildID:      bs.lastBuildID,
		Status:       string(bs.lastStatus),
		Finished:     bs.lastFinished,
		Builds:       bs.builds,
		HasGoodBuild: bs.hasGoodBuild,
	}
	if bs.lastError != nil {
		s.Error = bs.lastError.Error()
	}
	return s
}
