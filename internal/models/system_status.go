package models

// Gate is one of the two admin-controlled switches.
type Gate string

const (
	GateSubmissions Gate = "submissions"
	GateAuctions    Gate = "auctions"
)

type SystemStatus struct {
	SubmissionsOpen bool `json:"submissions_open" db:"submissions_open"`
	AuctionsOpen    bool `json:"auctions_open" db:"auctions_open"`
}

func (s SystemStatus) IsOpen(g Gate) bool {
	switch g {
	case GateSubmissions:
		return s.SubmissionsOpen
	case GateAuctions:
		return s.AuctionsOpen
	}
	return false
}
