package output

import (
	"fmt"
	"sync"
	"time"

	"github.com/tanq16/hlsget/internal/utils"
)

// Manager renders a single-line progress display for one segment batch. It
// implements the scheduler's Progress interface; all methods are safe for
// concurrent use.
type Manager struct {
	mutex       sync.Mutex
	total       int
	done        int
	failed      int
	bytes       int64
	startTime   time.Time
	displayTick time.Duration
	doneCh      chan struct{}
	displayWg   sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{
		displayTick: 300 * time.Millisecond,
	}
}

func (m *Manager) Begin(totalSegments int) {
	m.mutex.Lock()
	m.total = totalSegments
	m.done = 0
	m.failed = 0
	m.bytes = 0
	m.startTime = time.Now()
	m.doneCh = make(chan struct{})
	m.mutex.Unlock()
	m.displayWg.Add(1)
	go m.displayLoop()
}

func (m *Manager) AddBytes(n int64) {
	m.mutex.Lock()
	m.bytes += n
	m.mutex.Unlock()
}

func (m *Manager) SegmentDone(completed bool) {
	m.mutex.Lock()
	m.done++
	if !completed {
		m.failed++
	}
	m.mutex.Unlock()
}

func (m *Manager) End() {
	close(m.doneCh)
	m.displayWg.Wait()
	m.renderLine()
	fmt.Println()
}

func (m *Manager) displayLoop() {
	defer m.displayWg.Done()
	ticker := time.NewTicker(m.displayTick)
	defer ticker.Stop()
	for {
		select {
		case <-m.doneCh:
			return
		case <-ticker.C:
			m.renderLine()
		}
	}
}

func (m *Manager) renderLine() {
	m.mutex.Lock()
	total, done, failed, bytes := m.total, m.done, m.failed, m.bytes
	elapsed := time.Since(m.startTime).Round(time.Second)
	m.mutex.Unlock()

	barWidth := min(30, getTerminalWidth()/3)
	line := fmt.Sprintf("%s %s %s",
		RenderProgressBar(int64(done), int64(total), barWidth),
		debugStyle.Render(fmt.Sprintf("%d/%d segments %s %s", done, total, StyleSymbols["bullet"], utils.FormatBytes(uint64(bytes)))),
		debugStyle.Render(elapsed.String()),
	)
	if failed > 0 {
		line += " " + errorStyle.Render(fmt.Sprintf("%s %d failed", StyleSymbols["fail"], failed))
	}
	fmt.Printf("\r\033[K%s", line)
}
