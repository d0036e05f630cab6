package community

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"backend-taqvo/internal/stream"
)

var (
	ErrSignInRequired = errors.New("sign-in required")
	ErrNotCreator     = errors.New("only the creator can delete a challenge")
	ErrNotFound       = errors.New("not found")
)

// Gateway is the stateless remote table-store boundary. Reads degrade to an
// empty result when the backend is unreachable; writes propagate failure so
// the model can queue them.
type Gateway interface {
	Challenges(ctx context.Context, userID string) []Challenge
	Clubs(ctx context.Context, userID string) []Club
	Leaderboard(ctx context.Context) []LeaderboardEntry
	CreateChallenge(ctx context.Context, userID string, input Challenge) (Challenge, error)
	CreateClub(ctx context.Context, userID string, input Club) (Club, error)
	DeleteChallenge(ctx context.Context, id string) error
	SetChallengeJoined(ctx context.Context, userID, challengeID string, joined bool) error
	SetClubJoined(ctx context.Context, userID, clubID string, joined bool) error
	UploadContributions(ctx context.Context, userID, challengeID string, records []Contribution) error
	Invite(ctx context.Context, userID, challengeID string, usernames []string) error
}

// OverrideStore holds device-local join flags that win over server state
// until the next successful sync. Implementations scope storage by user.
type OverrideStore interface {
	Get(ctx context.Context) (map[string]bool, error)
	Set(ctx context.Context, id string, joined bool) error
	Delete(ctx context.Context, id string) error
}

// WriteQueue is the durable list of pending offline mutations.
type WriteQueue interface {
	Enqueue(ctx context.Context, w Write) error
	Drain(ctx context.Context, apply func(context.Context, Write) error) error
}

// Source supplies per-day activity summaries from the tracking subsystem.
type Source interface {
	DailySummaries(ctx context.Context) ([]DailySummary, error)
}

// Identity exposes the device's current authenticated user, empty when
// signed out.
type Identity interface {
	UserID() string
}

// Model is the in-memory community state. All list mutations happen under
// one mutex; remote completion paths re-enter it before touching state.
type Model struct {
	gw          Gateway
	challengeOv OverrideStore
	clubOv      OverrideStore
	queue       WriteQueue
	source      Source
	session     Identity
	hub         *stream.Hub
	demoSeed    bool

	mu          sync.Mutex
	challenges  []Challenge
	clubs       []Club
	leaderboard []LeaderboardEntry
	sortMode    SortMode
}

func NewModel(gw Gateway, challengeOv, clubOv OverrideStore, q WriteQueue, source Source, session Identity, hub *stream.Hub, demoSeed bool) *Model {
	return &Model{
		gw:          gw,
		challengeOv: challengeOv,
		clubOv:      clubOv,
		queue:       q,
		source:      source,
		session:     session,
		hub:         hub,
		demoSeed:    demoSeed,
		sortMode:    SortDistance,
	}
}

// Load pulls authoritative state from the gateway, applies local join
// overrides on top of the server values, then flushes the offline queue.
// An unreachable backend yields empty lists, never an error.
func (m *Model) Load(ctx context.Context) {
	userID := m.session.UserID()

	challenges := m.gw.Challenges(ctx, userID)
	if ov, err := m.challengeOv.Get(ctx); err == nil {
		for i := range challenges {
			if joined, ok := ov[challenges[i].ID]; ok {
				challenges[i].Joined = joined
			}
		}
	}
	if len(challenges) == 0 && m.demoSeed {
		challenges = demoChallenges(time.Now())
	}

	clubs := m.gw.Clubs(ctx, userID)
	if ov, err := m.clubOv.Get(ctx); err == nil {
		for i := range clubs {
			if joined, ok := ov[clubs[i].ID]; ok {
				clubs[i].Joined = joined
			}
		}
	}

	leaderboard := m.gw.Leaderboard(ctx)

	m.mu.Lock()
	m.challenges = challenges
	m.clubs = clubs
	m.leaderboard = leaderboard
	sortLeaderboard(m.leaderboard, m.sortMode)
	m.mu.Unlock()

	m.notify("reloaded")
	m.drainQueue(ctx)
}

// ToggleJoin flips the joined flag optimistically, persists the override,
// then pushes to the backend. Push failure enqueues the write and never
// rolls back the flip.
func (m *Model) ToggleJoin(ctx context.Context, challengeID string) (bool, error) {
	m.mu.Lock()
	idx := -1
	for i := range m.challenges {
		if m.challenges[i].ID == challengeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return false, ErrNotFound
	}
	m.challenges[idx].Joined = !m.challenges[idx].Joined
	joined := m.challenges[idx].Joined
	m.mu.Unlock()

	if err := m.challengeOv.Set(ctx, challengeID, joined); err != nil {
		log.Printf("override persist failed: %v", err)
	}
	m.notify("challenge_join")

	if err := m.gw.SetChallengeJoined(ctx, m.session.UserID(), challengeID, joined); err != nil {
		m.enqueue(ctx, JoinWrite{ChallengeID: challengeID, Joined: joined})
	}
	return joined, nil
}

func (m *Model) ToggleClubJoin(ctx context.Context, clubID string) (bool, error) {
	m.mu.Lock()
	idx := -1
	for i := range m.clubs {
		if m.clubs[i].ID == clubID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return false, ErrNotFound
	}
	m.clubs[idx].Joined = !m.clubs[idx].Joined
	joined := m.clubs[idx].Joined
	if joined {
		m.clubs[idx].MemberCount++
	} else if m.clubs[idx].MemberCount > 0 {
		m.clubs[idx].MemberCount--
	}
	m.mu.Unlock()

	if err := m.clubOv.Set(ctx, clubID, joined); err != nil {
		log.Printf("override persist failed: %v", err)
	}
	m.notify("club_join")

	if err := m.gw.SetClubJoined(ctx, m.session.UserID(), clubID, joined); err != nil {
		m.enqueue(ctx, ClubJoinWrite{ClubID: clubID, Joined: joined})
	}
	return joined, nil
}

// CreateChallenge obtains a canonical identity from the gateway and prepends
// the result. Only outright rejection (e.g. signed out) propagates.
func (m *Model) CreateChallenge(ctx context.Context, input Challenge, autoJoin bool) (Challenge, error) {
	userID := m.session.UserID()
	created, err := m.gw.CreateChallenge(ctx, userID, input)
	if err != nil {
		return Challenge{}, err
	}
	created.Joined = autoJoin

	m.mu.Lock()
	m.challenges = append([]Challenge{created}, m.challenges...)
	m.mu.Unlock()

	if autoJoin {
		if err := m.challengeOv.Set(ctx, created.ID, true); err != nil {
			log.Printf("override persist failed: %v", err)
		}
		if err := m.gw.SetChallengeJoined(ctx, userID, created.ID, true); err != nil {
			m.enqueue(ctx, JoinWrite{ChallengeID: created.ID, Joined: true})
		}
	}
	m.notify("challenge_created")
	return created, nil
}

func (m *Model) CreateClub(ctx context.Context, input Club, autoJoin bool) (Club, error) {
	userID := m.session.UserID()
	created, err := m.gw.CreateClub(ctx, userID, input)
	if err != nil {
		return Club{}, err
	}
	created.Joined = autoJoin
	if autoJoin && created.MemberCount == 0 {
		created.MemberCount = 1
	}

	m.mu.Lock()
	m.clubs = append([]Club{created}, m.clubs...)
	m.mu.Unlock()

	if autoJoin {
		if err := m.clubOv.Set(ctx, created.ID, true); err != nil {
			log.Printf("override persist failed: %v", err)
		}
		if err := m.gw.SetClubJoined(ctx, userID, created.ID, true); err != nil {
			m.enqueue(ctx, ClubJoinWrite{ClubID: created.ID, Joined: true})
		}
	}
	m.notify("club_created")
	return created, nil
}

// RefreshProgress recomputes challenge progress from activity summaries,
// resorts the leaderboard, then uploads per-day contributions for joined
// challenges in the background.
func (m *Model) RefreshProgress(ctx context.Context) {
	summaries, err := m.source.DailySummaries(ctx)
	if err != nil {
		log.Printf("activity summaries unavailable: %v", err)
		summaries = nil
	}

	type joinedRange struct {
		id         string
		start, end time.Time
	}
	var joined []joinedRange

	m.mu.Lock()
	for i := range m.challenges {
		c := &m.challenges[i]
		c.ProgressM = distanceInRange(summaries, c.StartDate, c.EndDate)
		if c.Joined {
			joined = append(joined, joinedRange{id: c.ID, start: c.StartDate, end: c.EndDate})
		}
	}
	sortLeaderboard(m.leaderboard, m.sortMode)
	m.mu.Unlock()

	m.notify("progress_refreshed")

	userID := m.session.UserID()
	go func() {
		ctx := context.Background()
		for _, jr := range joined {
			records := contributionsForRange(jr.start, jr.end, summaries)
			if err := m.gw.UploadContributions(ctx, userID, jr.id, records); err != nil {
				m.enqueue(ctx, ContributionsWrite{ChallengeID: jr.id, Records: records})
			}
		}
	}()
}

func (m *Model) SetLeaderboardSort(mode SortMode) {
	m.mu.Lock()
	m.sortMode = mode
	sortLeaderboard(m.leaderboard, m.sortMode)
	m.mu.Unlock()
	m.notify("leaderboard_sorted")
}

// DeleteChallenge is creator-only. It removes the challenge from memory and
// from the override store; a failed remote delete is logged, not queued.
func (m *Model) DeleteChallenge(ctx context.Context, challengeID string) error {
	userID := m.session.UserID()

	m.mu.Lock()
	idx := -1
	for i := range m.challenges {
		if m.challenges[i].ID == challengeID {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	if userID == "" || m.challenges[idx].CreatedBy != userID {
		m.mu.Unlock()
		return ErrNotCreator
	}
	m.challenges = append(m.challenges[:idx], m.challenges[idx+1:]...)
	m.mu.Unlock()

	if err := m.challengeOv.Delete(ctx, challengeID); err != nil {
		log.Printf("override delete failed: %v", err)
	}
	if err := m.gw.DeleteChallenge(ctx, challengeID); err != nil {
		log.Printf("remote delete failed: %v", err)
	}
	m.notify("challenge_deleted")
	return nil
}

// InviteParticipants is fire-and-forget; a failed call is queued.
func (m *Model) InviteParticipants(ctx context.Context, challengeID string, usernames []string) {
	if err := m.gw.Invite(ctx, m.session.UserID(), challengeID, usernames); err != nil {
		m.enqueue(ctx, InviteWrite{ChallengeID: challengeID, Usernames: usernames})
	}
}

// HandleAuthChange drops all user-scoped in-memory state and reloads under
// the new identity. Load also drains whatever the previous session queued.
func (m *Model) HandleAuthChange(ctx context.Context) {
	m.mu.Lock()
	m.challenges = nil
	m.clubs = nil
	m.leaderboard = nil
	m.mu.Unlock()

	m.Load(ctx)
}

func (m *Model) Challenges() []Challenge {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Challenge, len(m.challenges))
	copy(out, m.challenges)
	return out
}

func (m *Model) Clubs() []Club {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Club, len(m.clubs))
	copy(out, m.clubs)
	return out
}

func (m *Model) Leaderboard() []LeaderboardEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LeaderboardEntry, len(m.leaderboard))
	copy(out, m.leaderboard)
	return out
}

func (m *Model) drainQueue(ctx context.Context) {
	err := m.queue.Drain(ctx, func(ctx context.Context, w Write) error {
		userID := m.session.UserID()
		switch op := w.(type) {
		case JoinWrite:
			return m.gw.SetChallengeJoined(ctx, userID, op.ChallengeID, op.Joined)
		case ClubJoinWrite:
			return m.gw.SetClubJoined(ctx, userID, op.ClubID, op.Joined)
		case ContributionsWrite:
			return m.gw.UploadContributions(ctx, userID, op.ChallengeID, op.Records)
		case InviteWrite:
			return m.gw.Invite(ctx, userID, op.ChallengeID, op.Usernames)
		}
		return nil
	})
	if err != nil {
		log.Printf("queue drain failed: %v", err)
	}
}

func (m *Model) enqueue(ctx context.Context, w Write) {
	if err := m.queue.Enqueue(ctx, w); err != nil {
		log.Printf("enqueue failed: %v", err)
	}
}

func (m *Model) notify(event string) {
	if m.hub == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"event": event})
	m.hub.Broadcast(stream.TopicCommunity, payload)
}
