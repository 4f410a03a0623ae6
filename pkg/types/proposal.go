package types

// Proposal is the on-chain state of a governance proposal relevant to voting.
type Proposal struct {
	ID uint64 `json:"id"`
	// VotingStart and VotingEnd bound the voting window, both inclusive.
	VotingStart Epoch `json:"voting_start_epoch"`
	VotingEnd   Epoch `json:"voting_end_epoch"`
}

// VotingOpen reports whether votes are accepted at epoch e.
func (p *Proposal) VotingOpen(e Epoch) bool {
	return e >= p.VotingStart && e <= p.VotingEnd
}
