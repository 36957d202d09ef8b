package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ---- users ----

type fakeUsers struct {
	byID map[uint]*models.User
	next uint
}

func newFakeUsers() *fakeUsers { return &fakeUsers{byID: map[uint]*models.User{}} }

func (f *fakeUsers) add(name string, role models.Role) *models.User {
	f.next++
	u := &models.User{ID: f.next, Username: name, Email: name + "@campus.edu", Role: role}
	f.byID[u.ID] = u
	return u
}

func (f *fakeUsers) CreateUser(_ context.Context, u *models.User) error {
	f.next++
	u.ID = f.next
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) GetUserByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	for _, u := range f.byID {
		if u.FirebaseUID != nil && *u.FirebaseUID == uid {
			return u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUsers) GetUsersByIDs(_ context.Context, ids []uint) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) CountExisting(_ context.Context, ids []uint) (int64, error) {
	var n int64
	for _, id := range ids {
		if _, ok := f.byID[id]; ok {
			n++
		}
	}
	return n, nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, u *models.User) error {
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUsers) SetBanned(_ context.Context, id uint, banned bool) error {
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	u.IsBanned = banned
	return nil
}

func (f *fakeUsers) SearchUsers(_ context.Context, q string, limit int) ([]models.User, error) {
	var out []models.User
	for _, u := range f.byID {
		if strings.Contains(strings.ToLower(u.Username), strings.ToLower(q)) {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUsers) ListActiveIDsByRole(_ context.Context, role models.Role) ([]uint, error) {
	var ids []uint
	for id, u := range f.byID {
		if !u.IsBanned && (role == "" || u.Role == role) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeUsers) CountUsers(_ context.Context) (int64, int64, error) {
	var banned int64
	for _, u := range f.byID {
		if u.IsBanned {
			banned++
		}
	}
	return int64(len(f.byID)), banned, nil
}

// ---- follow graph ----

type pair struct{ a, b uint }

type fakeFollows struct {
	users    *fakeUsers
	follows  map[pair]int
	requests map[pair]int
	seq      int
}

func newFakeFollows(users *fakeUsers) *fakeFollows {
	return &fakeFollows{users: users, follows: map[pair]int{}, requests: map[pair]int{}}
}

func (f *fakeFollows) IsFollowing(_ context.Context, a, b uint) (bool, error) {
	_, ok := f.follows[pair{a, b}]
	return ok, nil
}

func (f *fakeFollows) AreConnected(_ context.Context, a, b uint) (bool, error) {
	_, ab := f.follows[pair{a, b}]
	_, ba := f.follows[pair{b, a}]
	return ab || ba, nil
}

func (f *fakeFollows) DeleteFollow(_ context.Context, a, b uint) (bool, error) {
	if _, ok := f.follows[pair{a, b}]; !ok {
		return false, nil
	}
	delete(f.follows, pair{a, b})
	return true, nil
}

func (f *fakeFollows) CreateRequest(_ context.Context, a, b uint) (bool, error) {
	if _, ok := f.requests[pair{a, b}]; ok {
		return false, nil
	}
	f.seq++
	f.requests[pair{a, b}] = f.seq
	return true, nil
}

func (f *fakeFollows) HasRequest(_ context.Context, a, b uint) (bool, error) {
	_, ok := f.requests[pair{a, b}]
	return ok, nil
}

func (f *fakeFollows) DeleteRequest(_ context.Context, a, b uint) (bool, error) {
	if _, ok := f.requests[pair{a, b}]; !ok {
		return false, nil
	}
	delete(f.requests, pair{a, b})
	return true, nil
}

func (f *fakeFollows) AcceptRequest(_ context.Context, a, b uint) error {
	if _, ok := f.requests[pair{a, b}]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.requests, pair{a, b})
	if _, ok := f.follows[pair{a, b}]; !ok {
		f.seq++
		f.follows[pair{a, b}] = f.seq
	}
	return nil
}

// follow materializes an edge directly, bypassing the request flow
func (f *fakeFollows) follow(a, b uint) {
	f.seq++
	f.follows[pair{a, b}] = f.seq
}

func (f *fakeFollows) IncomingRequests(_ context.Context, target uint) ([]models.FollowRequest, error) {
	type row struct {
		seq int
		req models.FollowRequest
	}
	var rows []row
	for p, seq := range f.requests {
		if p.b == target {
			rows = append(rows, row{seq, models.FollowRequest{RequesterID: p.a, TargetID: p.b}})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	out := make([]models.FollowRequest, len(rows))
	for i, r := range rows {
		out[i] = r.req
	}
	return out, nil
}

func (f *fakeFollows) ids(match func(pair) (uint, bool)) []uint {
	type row struct {
		seq int
		id  uint
	}
	var rows []row
	for p, seq := range f.follows {
		if id, ok := match(p); ok {
			rows = append(rows, row{seq, id})
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })
	out := make([]uint, len(rows))
	for i, r := range rows {
		out[i] = r.id
	}
	return out
}

func window(ids []uint, offset, limit int) []uint {
	if offset >= len(ids) {
		return []uint{}
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end]
}

func (f *fakeFollows) ListFollowerIDs(_ context.Context, userID uint, offset, limit int) ([]uint, int64, error) {
	all := f.ids(func(p pair) (uint, bool) { return p.a, p.b == userID })
	return window(all, offset, limit), int64(len(all)), nil
}

func (f *fakeFollows) ListFollowingIDs(_ context.Context, userID uint, offset, limit int) ([]uint, int64, error) {
	all := f.ids(func(p pair) (uint, bool) { return p.b, p.a == userID })
	return window(all, offset, limit), int64(len(all)), nil
}

func (f *fakeFollows) FollowingIDs(_ context.Context, userID uint) ([]uint, error) {
	return f.ids(func(p pair) (uint, bool) { return p.b, p.a == userID }), nil
}

func (f *fakeFollows) CountFollowers(_ context.Context, userID uint) (int64, error) {
	return int64(len(f.ids(func(p pair) (uint, bool) { return p.a, p.b == userID }))), nil
}

func (f *fakeFollows) CountFollowing(_ context.Context, userID uint) (int64, error) {
	return int64(len(f.ids(func(p pair) (uint, bool) { return p.b, p.a == userID }))), nil
}

func (f *fakeFollows) FollowerCounts(_ context.Context, exclude []uint, limit int) ([]models.FollowerCount, error) {
	skip := map[uint]bool{}
	for _, id := range exclude {
		skip[id] = true
	}
	counts := map[uint]int64{}
	for id, u := range f.users.byID {
		if !u.IsBanned && !skip[id] {
			counts[id] = 0
		}
	}
	for p := range f.follows {
		if _, ok := counts[p.b]; ok {
			counts[p.b]++
		}
	}
	out := make([]models.FollowerCount, 0, len(counts))
	for id, n := range counts {
		out = append(out, models.FollowerCount{UserID: id, Followers: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Followers != out[j].Followers {
			return out[i].Followers > out[j].Followers
		}
		return out[i].UserID < out[j].UserID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ---- notifications ----

type fakeNotifications struct {
	items []models.Notification
	// createManyErr, when set, decides the outcome of each CreateMany call
	createManyErr func(call int) error
	calls         int
	createErr     error
}

func (f *fakeNotifications) CreateNotification(_ context.Context, n *models.Notification) error {
	if f.createErr != nil {
		return f.createErr
	}
	n.ID = primitive.NewObjectID()
	n.CreatedAt = time.Now()
	n.UpdatedAt = n.CreatedAt
	f.items = append(f.items, *n)
	return nil
}

func (f *fakeNotifications) CreateMany(_ context.Context, ns []models.Notification) (int, error) {
	f.calls++
	if f.createManyErr != nil {
		if err := f.createManyErr(f.calls); err != nil {
			return 0, err
		}
	}
	for i := range ns {
		ns[i].ID = primitive.NewObjectID()
		ns[i].CreatedAt = time.Now()
		ns[i].UpdatedAt = ns[i].CreatedAt
		f.items = append(f.items, ns[i])
	}
	return len(ns), nil
}

func (f *fakeNotifications) forRecipient(id uint) []models.Notification {
	var out []models.Notification
	for _, n := range f.items {
		if n.RecipientID == id {
			out = append(out, n)
		}
	}
	return out
}

func (f *fakeNotifications) GetByRecipientID(_ context.Context, recipientID uint, skip, limit int64) ([]models.Notification, int64, error) {
	all := f.forRecipient(recipientID)
	sort.SliceStable(all, func(i, j int) bool { return all[i].UpdatedAt.After(all[j].UpdatedAt) })
	total := int64(len(all))
	if skip >= total {
		return []models.Notification{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (f *fakeNotifications) GetUnreadCount(_ context.Context, recipientID uint) (int64, error) {
	var n int64
	for _, it := range f.forRecipient(recipientID) {
		if !it.Read {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) MarkAsRead(_ context.Context, id string, recipientID uint) error {
	for i := range f.items {
		if f.items[i].ID.Hex() == id && f.items[i].RecipientID == recipientID {
			f.items[i].Read = true
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotifications) MarkAllAsRead(_ context.Context, recipientID uint) (int64, error) {
	var n int64
	for i := range f.items {
		if f.items[i].RecipientID == recipientID && !f.items[i].Read {
			f.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifications) FindFollowRequest(_ context.Context, senderID, recipientID uint) (*models.Notification, error) {
	for i := len(f.items) - 1; i >= 0; i-- {
		n := f.items[i]
		if n.SenderID == senderID && n.RecipientID == recipientID && n.Type == models.NotificationFollowRequest {
			return &n, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeNotifications) UpdateType(_ context.Context, id primitive.ObjectID, from, to models.NotificationType, message string) error {
	for i := range f.items {
		if f.items[i].ID == id && f.items[i].Type == from {
			f.items[i].Type = to
			f.items[i].Message = message
			f.items[i].Read = false
			f.items[i].UpdatedAt = time.Now()
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotifications) Delete(_ context.Context, id string, recipientID uint) error {
	for i := range f.items {
		if f.items[i].ID.Hex() == id && f.items[i].RecipientID == recipientID {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotifications) DeleteByID(_ context.Context, id primitive.ObjectID) error {
	for i := range f.items {
		if f.items[i].ID == id {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakeNotifications) DeleteByReference(_ context.Context, t models.NotificationType, ref string) (int64, error) {
	kept := f.items[:0]
	var n int64
	for _, it := range f.items {
		if it.Type == t && it.ReferenceID == ref {
			n++
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return n, nil
}

func (f *fakeNotifications) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	kept := f.items[:0]
	var n int64
	for _, it := range f.items {
		if it.CreatedAt.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, it)
	}
	f.items = kept
	return n, nil
}

// ---- posts ----

type fakePosts struct {
	byID map[string]*models.Post
	seq  int
}

func newFakePosts() *fakePosts { return &fakePosts{byID: map[string]*models.Post{}} }

func (f *fakePosts) CreatePost(_ context.Context, p *models.Post) error {
	f.seq++
	p.ID = primitive.NewObjectID()
	p.CreatedAt = time.Unix(int64(f.seq), 0)
	p.UpdatedAt = p.CreatedAt
	if p.Likes == nil {
		p.Likes = []uint{}
	}
	if p.Comments == nil {
		p.Comments = []models.Comment{}
	}
	f.byID[p.ID.Hex()] = p
	return nil
}

func (f *fakePosts) GetPostByID(_ context.Context, id string) (*models.Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakePosts) GetPostsByIDs(_ context.Context, ids []string) ([]models.Post, error) {
	out := []models.Post{}
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakePosts) GetPostsByAuthors(_ context.Context, authors []uint, skip, limit int64) ([]models.Post, int64, error) {
	want := map[uint]bool{}
	for _, a := range authors {
		want[a] = true
	}
	all := []models.Post{}
	for _, p := range f.byID {
		if want[p.AuthorID] {
			all = append(all, *p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if skip >= total {
		return []models.Post{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return all[skip:end], total, nil
}

func (f *fakePosts) DeletePost(_ context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakePosts) AddLike(_ context.Context, id string, userID uint) (bool, error) {
	p, ok := f.byID[id]
	if !ok || p.LikedBy(userID) {
		return false, nil
	}
	p.Likes = append(p.Likes, userID)
	return true, nil
}

func (f *fakePosts) RemoveLike(_ context.Context, id string, userID uint) (bool, error) {
	p, ok := f.byID[id]
	if !ok {
		return false, nil
	}
	for i, l := range p.Likes {
		if l == userID {
			p.Likes = append(p.Likes[:i], p.Likes[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePosts) AddComment(_ context.Context, id string, c *models.Comment) error {
	p, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	p.Comments = append(p.Comments, *c)
	return nil
}

func (f *fakePosts) RemoveComment(_ context.Context, id, commentID string) error {
	p, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	for i, c := range p.Comments {
		if c.ID.Hex() == commentID {
			p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (f *fakePosts) CountPosts(_ context.Context) (int64, error) { return int64(len(f.byID)), nil }

// ---- bookmarks ----

type fakeSaved struct {
	rows []models.SavedPost
}

func (f *fakeSaved) SavePost(_ context.Context, userID uint, postID string) (bool, error) {
	for _, r := range f.rows {
		if r.UserID == userID && r.PostID == postID {
			return false, nil
		}
	}
	f.rows = append(f.rows, models.SavedPost{UserID: userID, PostID: postID})
	return true, nil
}

func (f *fakeSaved) UnsavePost(_ context.Context, userID uint, postID string) (bool, error) {
	for i, r := range f.rows {
		if r.UserID == userID && r.PostID == postID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSaved) ListPostIDs(_ context.Context, userID uint, offset, limit int) ([]string, int64, error) {
	var ids []string
	for i := len(f.rows) - 1; i >= 0; i-- {
		if f.rows[i].UserID == userID {
			ids = append(ids, f.rows[i].PostID)
		}
	}
	total := int64(len(ids))
	if offset >= len(ids) {
		return []string{}, total, nil
	}
	end := offset + limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[offset:end], total, nil
}

func (f *fakeSaved) GetSavedPostIDs(_ context.Context, userID uint, postIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, r := range f.rows {
		if r.UserID != userID {
			continue
		}
		for _, id := range postIDs {
			if id == r.PostID {
				out[id] = true
			}
		}
	}
	return out, nil
}

func (f *fakeSaved) DeleteForPost(_ context.Context, postID string) error {
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.PostID != postID {
			kept = append(kept, r)
		}
	}
	f.rows = kept
	return nil
}

// ---- stories ----

type fakeStories struct {
	byID  map[string]*models.Story
	order []string
	seen  map[string]map[uint]bool
}

func newFakeStories() *fakeStories {
	return &fakeStories{byID: map[string]*models.Story{}, seen: map[string]map[uint]bool{}}
}

func (f *fakeStories) CreateStory(_ context.Context, s *models.Story) error {
	s.ID = primitive.NewObjectID()
	s.CreatedAt = time.Now()
	s.ExpiresAt = s.CreatedAt.Add(models.StoryLifetime)
	f.byID[s.ID.Hex()] = s
	f.order = append(f.order, s.ID.Hex())
	return nil
}

func (f *fakeStories) GetStoryByID(_ context.Context, id string) (*models.Story, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return s, nil
}

func (f *fakeStories) GetActiveByAuthors(_ context.Context, authors []uint) ([]models.Story, error) {
	want := map[uint]bool{}
	for _, a := range authors {
		want[a] = true
	}
	out := []models.Story{}
	now := time.Now()
	for i := len(f.order) - 1; i >= 0; i-- {
		s, ok := f.byID[f.order[i]]
		if ok && want[s.AuthorID] && s.ExpiresAt.After(now) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (f *fakeStories) DeleteStory(_ context.Context, id string, authorID uint) error {
	s, ok := f.byID[id]
	if !ok || s.AuthorID != authorID {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeStories) DeleteExpiredStories(_ context.Context) (int64, error) {
	var n int64
	now := time.Now()
	for id, s := range f.byID {
		if !s.ExpiresAt.After(now) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStories) MarkSeen(_ context.Context, storyID string, viewerID uint) error {
	if f.seen[storyID] == nil {
		f.seen[storyID] = map[uint]bool{}
	}
	f.seen[storyID][viewerID] = true
	return nil
}

func (f *fakeStories) GetSeenStoryIDs(_ context.Context, viewerID uint, ids []string) (map[string]bool, error) {
	out := map[string]bool{}
	for _, id := range ids {
		if f.seen[id][viewerID] {
			out[id] = true
		}
	}
	return out, nil
}

// ---- messages ----

type fakeMessages struct {
	items []models.Message
}

func (f *fakeMessages) CreateMessage(_ context.Context, m *models.Message) error {
	m.ID = primitive.NewObjectID()
	m.CreatedAt = time.Unix(int64(len(f.items)+1), 0)
	f.items = append(f.items, *m)
	return nil
}

func (f *fakeMessages) GetConversation(_ context.Context, a, b uint, skip, limit int64) ([]models.Message, int64, error) {
	out := []models.Message{}
	for i := len(f.items) - 1; i >= 0; i-- {
		m := f.items[i]
		if (m.SenderID == a && m.RecipientID == b) || (m.SenderID == b && m.RecipientID == a) {
			out = append(out, m)
		}
	}
	total := int64(len(out))
	if skip >= total {
		return []models.Message{}, total, nil
	}
	end := skip + limit
	if end > total {
		end = total
	}
	return out[skip:end], total, nil
}

func (f *fakeMessages) GetConversationHeads(_ context.Context, userID uint) ([]repositories.ConversationHead, error) {
	index := map[uint]int{}
	var heads []repositories.ConversationHead
	for i := len(f.items) - 1; i >= 0; i-- {
		m := f.items[i]
		var peer uint
		switch userID {
		case m.SenderID:
			peer = m.RecipientID
		case m.RecipientID:
			peer = m.SenderID
		default:
			continue
		}
		j, ok := index[peer]
		if !ok {
			j = len(heads)
			index[peer] = j
			heads = append(heads, repositories.ConversationHead{PeerID: peer, LastMessage: m})
		}
		if m.RecipientID == userID && !m.Read {
			heads[j].Unread++
		}
	}
	return heads, nil
}

func (f *fakeMessages) MarkConversationRead(_ context.Context, readerID, peerID uint) (int64, error) {
	var n int64
	for i := range f.items {
		if f.items[i].SenderID == peerID && f.items[i].RecipientID == readerID && !f.items[i].Read {
			f.items[i].Read = true
			n++
		}
	}
	return n, nil
}

// ---- announcements ----

type fakeAnnouncements struct {
	byID map[string]*models.Announcement
}

func newFakeAnnouncements() *fakeAnnouncements {
	return &fakeAnnouncements{byID: map[string]*models.Announcement{}}
}

func (f *fakeAnnouncements) CreateAnnouncement(_ context.Context, a *models.Announcement) error {
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now()
	cp := *a
	f.byID[a.ID.Hex()] = &cp
	return nil
}

func (f *fakeAnnouncements) GetAnnouncementByID(_ context.Context, id string) (*models.Announcement, error) {
	a, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAnnouncements) ListAnnouncements(_ context.Context, skip, limit int64) ([]models.Announcement, int64, error) {
	out := []models.Announcement{}
	for _, a := range f.byID {
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (f *fakeAnnouncements) SetRecipientCount(_ context.Context, id primitive.ObjectID, count int) error {
	if a, ok := f.byID[id.Hex()]; ok {
		a.RecipientCount = count
	}
	return nil
}

// ---- reports ----

type fakeReports struct {
	byID map[string]*models.Report
}

func newFakeReports() *fakeReports { return &fakeReports{byID: map[string]*models.Report{}} }

func (f *fakeReports) CreateReport(_ context.Context, r *models.Report) error {
	r.ID = primitive.NewObjectID()
	r.CreatedAt = time.Now()
	cp := *r
	f.byID[r.ID.Hex()] = &cp
	return nil
}

func (f *fakeReports) GetReportByID(_ context.Context, id string) (*models.Report, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeReports) HasPending(_ context.Context, reporterID uint, t models.ReportTarget, targetID string) (bool, error) {
	for _, r := range f.byID {
		if r.ReporterID == reporterID && r.TargetType == t && r.TargetID == targetID && r.Status == models.ReportPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReports) ListReports(_ context.Context, status models.ReportStatus, skip, limit int64) ([]models.Report, int64, error) {
	out := []models.Report{}
	for _, r := range f.byID {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReports) UpdateStatus(_ context.Context, id string, from, to models.ReportStatus, adminID uint) error {
	r, ok := f.byID[id]
	if !ok || r.Status != from {
		return repositories.ErrNotFound
	}
	r.Status = to
	r.ResolvedBy = adminID
	return nil
}

func (f *fakeReports) ResolveForTarget(_ context.Context, t models.ReportTarget, targetID string, adminID uint) (int64, error) {
	var n int64
	for _, r := range f.byID {
		if r.TargetType == t && r.TargetID == targetID && (r.Status == models.ReportPending || r.Status == models.ReportReviewed) {
			r.Status = models.ReportResolved
			r.ResolvedBy = adminID
			n++
		}
	}
	return n, nil
}

func (f *fakeReports) CountPending(_ context.Context) (int64, error) {
	var n int64
	for _, r := range f.byID {
		if r.Status == models.ReportPending {
			n++
		}
	}
	return n, nil
}
