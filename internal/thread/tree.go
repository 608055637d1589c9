// Package thread derives display structures from flat task data: the
// two-level comment tree and subtask completion progress.
package thread

import "github.com/nhle/taskboard/internal/model"

// Thread is a top-level comment together with its direct replies.
type Thread struct {
	model.Comment
	Replies []model.Comment `json:"replies"`
}

// BuildTree groups a flat, ordered list of comments for one task into
// top-level threads. Both levels keep the input order.
//
// Only one level of nesting exists. A reply to a reply is attached to the
// nearest ancestor that is itself top-level in the list. A comment whose
// parent chain leaves the list (partial page) becomes top-level.
func BuildTree(comments []model.Comment) []Thread {
	byID := make(map[string]model.Comment, len(comments))
	for _, c := range comments {
		byID[c.ID] = c
	}

	roots := make([]Thread, 0, len(comments))
	rootIndex := make(map[string]int, len(comments))
	var replies []model.Comment
	var replyRoot []string

	for _, c := range comments {
		root, ok := rootOf(c, byID)
		if !ok {
			rootIndex[c.ID] = len(roots)
			roots = append(roots, Thread{Comment: c, Replies: []model.Comment{}})
			continue
		}
		replies = append(replies, c)
		replyRoot = append(replyRoot, root)
	}

	for i, r := range replies {
		idx := rootIndex[replyRoot[i]]
		roots[idx].Replies = append(roots[idx].Replies, r)
	}

	return roots
}

// rootOf walks the parent chain of c inside byID and returns the id of the
// top-level ancestor. It reports false when c itself is top-level: it has no
// parent, its parent is not in the list, or the chain loops.
func rootOf(c model.Comment, byID map[string]model.Comment) (string, bool) {
	seen := map[string]bool{c.ID: true}
	cur := c
	for cur.IsReply() {
		parent, ok := byID[*cur.ParentID]
		if !ok {
			break
		}
		if seen[parent.ID] {
			return "", false
		}
		seen[parent.ID] = true
		cur = parent
	}

	if cur.ID == c.ID {
		return "", false
	}
	return cur.ID, true
}

// Flatten returns every comment in the tree in display order.
func Flatten(threads []Thread) []model.Comment {
	var out []model.Comment
	for _, t := range threads {
		out = append(out, t.Comment)
		out = append(out, t.Replies...)
	}
	return out
}

// CountComments returns the number of comments that are not deleted.
func CountComments(threads []Thread) int {
	n := 0
	for _, c := range Flatten(threads) {
		if !c.IsDeleted {
			n++
		}
	}
	return n
}
