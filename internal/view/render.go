package view

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/store"

	"github.com/dustin/go-humanize"
)

const (
	excerptLength = 150
	dateLayout    = "January 2, 2006"
)

// Renderer writes views of the client state as plain text.
type Renderer struct {
	w io.Writer
	// Now is used for relative dates; tests pin it.
	Now func() time.Time
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, Now: time.Now}
}

func (r *Renderer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.w, format, args...)
}

// Excerpt shortens content to the card length, marking the cut with "...".
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= excerptLength {
		return content
	}
	return string(runes[:excerptLength]) + "..."
}

// AuthorName falls back to "Unknown Author" when the author was not loaded.
func AuthorName(p models.Post) string {
	if p.Author == nil || p.Author.Name == "" {
		return "Unknown Author"
	}
	return p.Author.Name
}

// FormatDate renders t the way posts show their publication date.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func (r *Renderer) ago(t time.Time) string {
	return humanize.RelTime(t, r.Now(), "ago", "from now")
}

func likeLabel(n int) string {
	if n == 1 {
		return "1 like"
	}
	return fmt.Sprintf("%d likes", n)
}

// PostCard renders one feed entry. viewerID marks liked and owned posts.
func (r *Renderer) PostCard(p models.Post, viewerID string) {
	marks := ""
	if viewerID != "" && p.LikedBy(viewerID) {
		marks += " ♥"
	}
	if viewerID != "" && p.AuthorID == viewerID {
		marks += " [yours]"
	}
	r.printf("%s%s\n", p.Title, marks)
	r.printf("  by %s · %s (%s)\n", AuthorName(p), FormatDate(p.CreatedAt), r.ago(p.CreatedAt))
	r.printf("  %s\n", Excerpt(p.Content))
	if len(p.Tags) > 0 {
		r.printf("  #%s\n", strings.Join(p.Tags, " #"))
	}
	r.printf("  %s · id %s\n", likeLabel(len(p.Likes)), p.ID)
}

// PostList renders the feed in store order.
func (r *Renderer) PostList(posts []models.Post, viewerID string) {
	if len(posts) == 0 {
		r.printf("No posts found\n")
		return
	}
	for i, p := range posts {
		if i > 0 {
			r.printf("\n")
		}
		r.PostCard(p, viewerID)
	}
}

// PostDetail renders a full post with its content untruncated.
func (r *Renderer) PostDetail(p models.Post, viewerID string) {
	r.printf("%s\n", p.Title)
	r.printf("%s\n", strings.Repeat("=", len([]rune(p.Title))))
	r.printf("By %s on %s\n", AuthorName(p), FormatDate(p.CreatedAt))
	if p.UpdatedAt.After(p.CreatedAt.Add(time.Second)) {
		r.printf("Updated %s\n", r.ago(p.UpdatedAt))
	}
	if p.Image != "" {
		r.printf("Image: %s\n", p.Image)
	}
	r.printf("\n%s\n\n", p.Content)
	if len(p.Tags) > 0 {
		r.printf("Tags: %s\n", strings.Join(p.Tags, ", "))
	}
	liked := ""
	if viewerID != "" && p.LikedBy(viewerID) {
		liked = " (you like this)"
	}
	r.printf("%s%s\n", likeLabel(len(p.Likes)), liked)
}

// Dashboard lists the signed-in user's loaded posts.
func (r *Renderer) Dashboard(s store.State) {
	if s.Auth.User == nil {
		r.printf("Not signed in\n")
		return
	}
	r.printf("Welcome %s\n\n", s.Auth.User.Name)
	posts := s.UserPosts(s.Auth.User.ID)
	if len(posts) == 0 {
		r.printf("You have not created any posts yet\n")
		return
	}
	r.printf("Your Posts (%d)\n\n", len(posts))
	r.PostList(posts, s.Auth.User.ID)
}

// Profile renders a user's public details.
func (r *Renderer) Profile(u *models.User) {
	if u == nil {
		r.printf("Not signed in\n")
		return
	}
	r.printf("%s <%s>\n", u.Name, u.Email)
	if u.Bio != "" {
		r.printf("%s\n", u.Bio)
	}
	if u.Avatar != "" {
		r.printf("Avatar: %s\n", u.Avatar)
	}
	if !u.CreatedAt.IsZero() {
		r.printf("Member since %s\n", FormatDate(u.CreatedAt))
	}
}

// Users renders the user directory.
func (r *Renderer) Users(users []models.User) {
	for _, u := range users {
		r.printf("%-24s %s\n", u.Name, u.Email)
	}
}

// Status renders in-flight actions and pending notices. It prints nothing
// when idle with no notices.
func (r *Renderer) Status(s store.State) {
	var inflight []string
	for key, on := range s.UI.Loading {
		if on {
			inflight = append(inflight, string(key))
		}
	}
	if len(inflight) > 0 {
		sort.Strings(inflight)
		r.printf("… %s\n", strings.Join(inflight, ", "))
	}
	for _, n := range s.UI.Notices {
		r.printf("! %s\n", n.Message)
	}
}

// FieldErrors renders validation failures in a stable order.
func (r *Renderer) FieldErrors(errs FieldErrors) {
	fields := make([]string, 0, len(errs))
	for f := range errs {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		r.printf("%s: %s\n", f, errs[f])
	}
}

// FeedEvent renders a live event as one line.
func (r *Renderer) FeedEvent(ev models.FeedEvent, s store.State) {
	switch ev.Type {
	case models.EventPostCreated, models.EventPostUpdated:
		var p models.Post
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return
		}
		verb := "new post"
		if ev.Type == models.EventPostUpdated {
			verb = "updated"
		}
		r.printf("%s: %q by %s\n", verb, p.Title, AuthorName(p))
	case models.EventPostDeleted:
		var ref models.PostRef
		if err := json.Unmarshal(ev.Payload, &ref); err != nil {
			return
		}
		r.printf("deleted: %s\n", ref.ID)
	case models.EventPostLikesUpdated:
		var change models.LikesChange
		if err := json.Unmarshal(ev.Payload, &change); err != nil {
			return
		}
		title := change.ID
		if p, ok := s.FindPost(change.ID); ok {
			title = p.Title
		}
		r.printf("%s now has %s\n", title, likeLabel(len(change.Likes)))
	}
}
