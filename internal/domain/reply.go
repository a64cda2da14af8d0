package domain

// Reply is the parsed result of one upstream generation call. It is one of
// DirectText, CandidateList or Unrecognized; integrations produce it and
// consumers switch over the concrete type.
type Reply interface {
	isReply()
}

// DirectText is a reply that exposes its text directly.
type DirectText struct {
	Text string
}

// CandidateList is a reply carrying alternative candidates. Repr is the
// default representation of the whole reply.
type CandidateList struct {
	Candidates []Candidate
	Repr       string
}

// Unrecognized is any other reply, kept only as its default representation.
type Unrecognized struct {
	Repr string
}

// Candidate is one generated alternative. Content is nil when the upstream
// omitted it.
type Candidate struct {
	Content *Content
}

type Content struct {
	Parts []Part
}

type Part struct {
	Text string
}

func (DirectText) isReply()    {}
func (CandidateList) isReply() {}
func (Unrecognized) isReply()  {}
