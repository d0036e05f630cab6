package community

type WriteKind string

const (
	WriteJoin          WriteKind = "join"
	WriteClubJoin      WriteKind = "club_join"
	WriteContributions WriteKind = "contributions"
	WriteInvite        WriteKind = "invite"
)

// Write is a pending offline mutation. Each variant carries only the payload
// for its kind; the queue serializes them under a kind-tagged envelope.
type Write interface {
	Kind() WriteKind
}

type JoinWrite struct {
	ChallengeID string `json:"challenge_id"`
	Joined      bool   `json:"joined"`
}

func (JoinWrite) Kind() WriteKind { return WriteJoin }

type ClubJoinWrite struct {
	ClubID string `json:"club_id"`
	Joined bool   `json:"joined"`
}

func (ClubJoinWrite) Kind() WriteKind { return WriteClubJoin }

type ContributionsWrite struct {
	ChallengeID string         `json:"challenge_id"`
	Records     []Contribution `json:"records"`
}

func (ContributionsWrite) Kind() WriteKind { return WriteContributions }

type InviteWrite struct {
	ChallengeID string   `json:"challenge_id"`
	Usernames   []string `json:"usernames"`
}

func (InviteWrite) Kind() WriteKind { return WriteInvite }
