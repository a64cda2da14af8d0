package usecase

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chatbot-relay/internal/domain"
)

func expectUsecaseError(t *testing.T, err error, code ErrorCode, reason string) {
	t.Helper()
	var usecaseErr *Error
	require.ErrorAs(t, err, &usecaseErr)
	require.Equal(t, code, usecaseErr.Code)
	require.Equal(t, reason, usecaseErr.Reason)
}

func candidate(parts ...string) domain.Candidate {
	c := domain.Candidate{Content: &domain.Content{}}
	for _, p := range parts {
		c.Content.Parts = append(c.Content.Parts, domain.Part{Text: p})
	}
	return c
}

func TestNormalizeReply(t *testing.T) {
	cases := []struct {
		name  string
		reply domain.Reply
		want  string
	}{
		{name: "direct text", reply: domain.DirectText{Text: "hi there"}, want: "hi there"},
		{name: "direct text untrimmed", reply: domain.DirectText{Text: "  padded \n"}, want: "  padded \n"},
		{name: "direct empty text", reply: domain.DirectText{}, want: ""},
		{
			name:  "first candidate first part",
			reply: domain.CandidateList{Candidates: []domain.Candidate{candidate("one", "two"), candidate("three")}},
			want:  "one",
		},
		{name: "empty candidate list", reply: domain.CandidateList{Repr: `{"candidates":[]}`}, want: `{"candidates":[]}`},
		{name: "unrecognized", reply: domain.Unrecognized{Repr: "<reply>"}, want: "<reply>"},
		{name: "nil", reply: nil, want: "<nil>"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeReply(tc.reply)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestNormalizeReply_CandidateWithoutContent(t *testing.T) {
	_, err := NormalizeReply(domain.CandidateList{Candidates: []domain.Candidate{{}}, Repr: "x"})
	expectUsecaseError(t, err, ErrorUnsupportedReplyShape, "candidate_content_missing")

	_, err = NormalizeReply(domain.CandidateList{Candidates: []domain.Candidate{candidate()}, Repr: "x"})
	expectUsecaseError(t, err, ErrorUnsupportedReplyShape, "candidate_parts_missing")
}

func TestNormalizeReply_OnlyFirstCandidateMatters(t *testing.T) {
	got, err := NormalizeReply(domain.CandidateList{Candidates: []domain.Candidate{candidate("ok"), {}}})
	require.NoError(t, err)
	require.Equal(t, "ok", got)
}
