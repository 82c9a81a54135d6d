package eformidling

import (
	"sort"
	"sync"
	"time"

	"github.com/darkkaiser/app-runtime/internal/service/contract"
)

// TrackedMessage 발송 이후 상태를 추적 중인 메시지
type TrackedMessage struct {
	MessageID    string
	InstanceID   string
	Status       string
	DispatchedAt time.Time
	UpdatedAt    time.Time
}

// Terminal 더 이상 상태 조회가 필요 없는지 여부
func (m TrackedMessage) Terminal() bool {
	return contract.IsTerminalStatus(m.Status)
}

// StatusTracker 발송된 메시지의 최근 상태를 메모리에 보관합니다.
type StatusTracker struct {
	mu       sync.RWMutex
	messages map[string]TrackedMessage
	now      func() time.Time
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{
		messages: make(map[string]TrackedMessage),
		now:      time.Now,
	}
}

// Track 발송된 메시지를 추적 대상으로 등록합니다. 이미 등록된 메시지면 상태만 갱신합니다.
func (t *StatusTracker) Track(messageID, instanceID, status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	m, ok := t.messages[messageID]
	if !ok {
		m = TrackedMessage{MessageID: messageID, InstanceID: instanceID, DispatchedAt: now}
	}
	m.Status = status
	m.UpdatedAt = now
	t.messages[messageID] = m
}

// Update 추적 중인 메시지의 상태를 갱신합니다. 상태가 바뀌었으면 갱신된 값과 true를 반환합니다.
func (t *StatusTracker) Update(messageID, status string) (TrackedMessage, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m, ok := t.messages[messageID]
	if !ok || m.Status == status {
		return m, false
	}
	m.Status = status
	m.UpdatedAt = t.now()
	t.messages[messageID] = m
	return m, true
}

// Get 메시지의 추적 정보를 조회합니다.
func (t *StatusTracker) Get(messageID string) (TrackedMessage, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	m, ok := t.messages[messageID]
	return m, ok
}

// Pending 최종 상태에 도달하지 않은 메시지를 발송 시각 순으로 반환합니다.
func (t *StatusTracker) Pending() []TrackedMessage {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var pending []TrackedMessage
	for _, m := range t.messages {
		if !m.Terminal() {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].DispatchedAt.Before(pending[j].DispatchedAt)
	})
	return pending
}

// Prune 최종 상태가 된 지 retention 이상 지난 메시지를 제거하고 제거한 개수를 반환합니다.
func (t *StatusTracker) Prune(retention time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-retention)
	removed := 0
	for id, m := range t.messages {
		if m.Terminal() && m.UpdatedAt.Before(cutoff) {
			delete(t.messages, id)
			removed++
		}
	}
	return removed
}

// Len 추적 중인 메시지 수
func (t *StatusTracker) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.messages)
}
