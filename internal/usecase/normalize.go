package usecase

import "chatbot-relay/internal/domain"

const nilRepr = "<nil>"

// NormalizeReply extracts the display text of a reply. A first candidate
// without content is reported as ErrorUnsupportedReplyShape instead of being
// stringified, since it means the upstream changed shape incompatibly.
func NormalizeReply(r domain.Reply) (string, error) {
	switch v := r.(type) {
	case domain.DirectText:
		return v.Text, nil
	case domain.CandidateList:
		if len(v.Candidates) == 0 {
			return v.Repr, nil
		}
		content := v.Candidates[0].Content
		if content == nil {
			return "", newError(ErrorUnsupportedReplyShape, "candidate_content_missing", nil)
		}
		if len(content.Parts) == 0 {
			return "", newError(ErrorUnsupportedReplyShape, "candidate_parts_missing", nil)
		}
		return content.Parts[0].Text, nil
	case domain.Unrecognized:
		return v.Repr, nil
	case nil:
		return nilRepr, nil
	default:
		return "", newError(ErrorUnsupportedReplyShape, "unknown_reply_variant", nil)
	}
}
