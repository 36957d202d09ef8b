package services

import (
	"context"
	"fmt"
	"time"

	"github.com/campusnet/backend/internal/models"
	"github.com/campusnet/backend/internal/repositories"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the authenticated caller of an operation
type Actor struct {
	ID   uint
	Role models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// ContentService serves posts, likes, comments, bookmarks and stories
type ContentService struct {
	users    repositories.UserRepository
	follows  repositories.FollowRepository
	posts    repositories.PostRepository
	saved    repositories.SavedPostRepository
	stories  repositories.StoryRepository
	notifier Notifier
	log      zerolog.Logger
}

func NewContentService(
	users repositories.UserRepository,
	follows repositories.FollowRepository,
	posts repositories.PostRepository,
	saved repositories.SavedPostRepository,
	stories repositories.StoryRepository,
	notifier Notifier,
	log zerolog.Logger,
) *ContentService {
	return &ContentService{
		users:    users,
		follows:  follows,
		posts:    posts,
		saved:    saved,
		stories:  stories,
		notifier: notifier,
		log:      log.With().Str("component", "content").Logger(),
	}
}

func (s *ContentService) CreatePost(ctx context.Context, authorID uint, req models.CreatePostRequest) (*models.Post, error) {
	post := &models.Post{
		AuthorID: authorID,
		Caption:  req.Caption,
		ImageURL: req.ImageURL,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, storeErr("create post", err)
	}
	return post, nil
}

func (s *ContentService) GetPost(ctx context.Context, viewerID uint, postID string) (*models.EnrichedPost, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storeErr("get post", err)
	}
	enriched, err := s.enrich(ctx, viewerID, []models.Post{*post})
	if err != nil {
		return nil, err
	}
	return &enriched[0], nil
}

// ListByAuthor pages one author's posts
func (s *ContentService) ListByAuthor(ctx context.Context, viewerID, authorID uint, page models.Page) ([]models.EnrichedPost, int64, error) {
	posts, total, err := s.posts.GetPostsByAuthors(ctx, []uint{authorID}, int64(page.Offset()), int64(page.Limit))
	if err != nil {
		return nil, 0, storeErr("list posts", err)
	}
	enriched, err := s.enrich(ctx, viewerID, posts)
	return enriched, total, err
}

// Feed pages the posts of everyone userID follows plus their own, newest first
func (s *ContentService) Feed(ctx context.Context, userID uint, page models.Page) ([]models.EnrichedPost, int64, error) {
	authors, err := s.audience(ctx, userID)
	if err != nil {
		return nil, 0, err
	}
	posts, total, err := s.posts.GetPostsByAuthors(ctx, authors, int64(page.Offset()), int64(page.Limit))
	if err != nil {
		return nil, 0, storeErr("load feed", err)
	}
	enriched, err := s.enrich(ctx, userID, posts)
	return enriched, total, err
}

// audience is following ∪ self
func (s *ContentService) audience(ctx context.Context, userID uint) ([]uint, error) {
	following, err := s.follows.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, storeErr("list following", err)
	}
	return append(following, userID), nil
}

func (s *ContentService) enrich(ctx context.Context, viewerID uint, posts []models.Post) ([]models.EnrichedPost, error) {
	out := make([]models.EnrichedPost, len(posts))
	if len(posts) == 0 {
		return out, nil
	}

	authorSet := make(map[uint]struct{})
	postIDs := make([]string, len(posts))
	for i, p := range posts {
		authorSet[p.AuthorID] = struct{}{}
		postIDs[i] = p.ID.Hex()
	}
	authorIDs := make([]uint, 0, len(authorSet))
	for id := range authorSet {
		authorIDs = append(authorIDs, id)
	}

	users, err := s.users.GetUsersByIDs(ctx, authorIDs)
	if err != nil {
		return nil, storeErr("load authors", err)
	}
	authors := make(map[uint]models.UserSummary, len(users))
	for i := range users {
		authors[users[i].ID] = users[i].ToSummary()
	}

	savedMap := map[string]bool{}
	if viewerID > 0 {
		if savedMap, err = s.saved.GetSavedPostIDs(ctx, viewerID, postIDs); err != nil {
			return nil, storeErr("load bookmarks", err)
		}
	}

	for i, p := range posts {
		out[i] = models.EnrichedPost{
			Post:          p,
			Author:        authors[p.AuthorID],
			LikesCount:    len(p.Likes),
			CommentsCount: len(p.Comments),
			IsLiked:       viewerID > 0 && p.LikedBy(viewerID),
			IsSaved:       savedMap[postIDs[i]],
		}
	}
	return out, nil
}

// DeletePost removes a post. Only its author or an admin may do so.
func (s *ContentService) DeletePost(ctx context.Context, actor Actor, postID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return storeErr("get post", err)
	}
	if post.AuthorID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: not the author of this post", ErrUnauthorized)
	}
	return s.removePost(ctx, postID)
}

func (s *ContentService) removePost(ctx context.Context, postID string) error {
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return storeErr("delete post", err)
	}
	if err := s.saved.DeleteForPost(ctx, postID); err != nil {
		s.log.Warn().Err(err).Str("post", postID).Msg("clear bookmarks of deleted post")
	}
	return nil
}

// ToggleLike flips userID's like on a post and reports the new state.
// Both branches are conditional on current membership.
func (s *ContentService) ToggleLike(ctx context.Context, postID string, userID uint) (bool, error) {
	added, err := s.posts.AddLike(ctx, postID, userID)
	if err != nil {
		return false, storeErr("like post", err)
	}
	if added {
		post, err := s.posts.GetPostByID(ctx, postID)
		if err == nil {
			if err := s.notifier.NotifyLike(ctx, userID, post.AuthorID, postID); err != nil {
				s.log.Warn().Err(err).Str("post", postID).Msg("like notification")
			}
		}
		return true, nil
	}

	removed, err := s.posts.RemoveLike(ctx, postID, userID)
	if err != nil {
		return false, storeErr("unlike post", err)
	}
	if removed {
		return false, nil
	}
	// neither matched: the post is gone or a concurrent call won
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return false, storeErr("get post", err)
	}
	return false, nil
}

func (s *ContentService) AddComment(ctx context.Context, postID string, userID uint, text string) (*models.Comment, error) {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return nil, storeErr("get post", err)
	}
	comment := &models.Comment{AuthorID: userID, Text: text}
	if err := s.posts.AddComment(ctx, postID, comment); err != nil {
		return nil, storeErr("add comment", err)
	}
	if err := s.notifier.NotifyComment(ctx, userID, post.AuthorID, postID, text); err != nil {
		s.log.Warn().Err(err).Str("post", postID).Msg("comment notification")
	}
	return comment, nil
}

// DeleteComment is allowed for the comment author, the post author and admins
func (s *ContentService) DeleteComment(ctx context.Context, actor Actor, postID, commentID string) error {
	post, err := s.posts.GetPostByID(ctx, postID)
	if err != nil {
		return storeErr("get post", err)
	}
	cID, err := primitive.ObjectIDFromHex(commentID)
	if err != nil {
		return fmt.Errorf("%w: comment", ErrNotFound)
	}
	comment, ok := post.FindComment(cID)
	if !ok {
		return fmt.Errorf("%w: comment", ErrNotFound)
	}
	if comment.AuthorID != actor.ID && post.AuthorID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("%w: cannot delete this comment", ErrUnauthorized)
	}
	return storeErr("delete comment", s.posts.RemoveComment(ctx, postID, commentID))
}

// ToggleBookmark saves or unsaves a post and reports whether it is saved now
func (s *ContentService) ToggleBookmark(ctx context.Context, userID uint, postID string) (bool, error) {
	if _, err := s.posts.GetPostByID(ctx, postID); err != nil {
		return false, storeErr("get post", err)
	}
	created, err := s.saved.SavePost(ctx, userID, postID)
	if err != nil {
		return false, storeErr("save post", err)
	}
	if created {
		return true, nil
	}
	if _, err := s.saved.UnsavePost(ctx, userID, postID); err != nil {
		return false, storeErr("unsave post", err)
	}
	return false, nil
}

func (s *ContentService) Bookmarks(ctx context.Context, userID uint, page models.Page) ([]models.EnrichedPost, int64, error) {
	ids, total, err := s.saved.ListPostIDs(ctx, userID, page.Offset(), page.Limit)
	if err != nil {
		return nil, 0, storeErr("list bookmarks", err)
	}
	posts, err := s.posts.GetPostsByIDs(ctx, ids)
	if err != nil {
		return nil, 0, storeErr("load bookmarked posts", err)
	}
	enriched, err := s.enrich(ctx, userID, posts)
	return enriched, total, err
}

func (s *ContentService) CreateStory(ctx context.Context, authorID uint, req models.CreateStoryRequest) (*models.Story, error) {
	story := &models.Story{
		AuthorID:  authorID,
		MediaURL:  req.MediaURL,
		MediaType: req.MediaType,
	}
	if err := s.stories.CreateStory(ctx, story); err != nil {
		return nil, storeErr("create story", err)
	}
	return story, nil
}

// ActiveStories groups unexpired stories of following ∪ self by author.
// The viewer's own group comes first when present.
func (s *ContentService) ActiveStories(ctx context.Context, viewerID uint) ([]models.StoryGroup, error) {
	authors, err := s.audience(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	stories, err := s.stories.GetActiveByAuthors(ctx, authors)
	if err != nil {
		return nil, storeErr("load stories", err)
	}
	if len(stories) == 0 {
		return []models.StoryGroup{}, nil
	}

	storyIDs := make([]string, len(stories))
	authorSet := make(map[uint]struct{})
	for i, st := range stories {
		storyIDs[i] = st.ID.Hex()
		authorSet[st.AuthorID] = struct{}{}
	}
	seen, err := s.stories.GetSeenStoryIDs(ctx, viewerID, storyIDs)
	if err != nil {
		return nil, storeErr("load story views", err)
	}
	ids := make([]uint, 0, len(authorSet))
	for id := range authorSet {
		ids = append(ids, id)
	}
	users, err := s.users.GetUsersByIDs(ctx, ids)
	if err != nil {
		return nil, storeErr("load authors", err)
	}
	summaries := make(map[uint]models.UserSummary, len(users))
	for i := range users {
		summaries[users[i].ID] = users[i].ToSummary()
	}

	// stories arrive newest first, so group order follows each author's latest story
	groups := []models.StoryGroup{}
	index := make(map[uint]int)
	for _, st := range stories {
		i, ok := index[st.AuthorID]
		if !ok {
			i = len(groups)
			index[st.AuthorID] = i
			groups = append(groups, models.StoryGroup{Author: summaries[st.AuthorID]})
		}
		groups[i].Items = append(groups[i].Items, st)
		if !seen[st.ID.Hex()] && st.AuthorID != viewerID {
			groups[i].HasUnseenItems = true
		}
	}
	if i, ok := index[viewerID]; ok && i != 0 {
		own := groups[i]
		copy(groups[1:i+1], groups[0:i])
		groups[0] = own
	}
	return groups, nil
}

// MarkStoryViewed records a view of an active story
func (s *ContentService) MarkStoryViewed(ctx context.Context, storyID string, viewerID uint) error {
	story, err := s.stories.GetStoryByID(ctx, storyID)
	if err != nil {
		return storeErr("get story", err)
	}
	if !story.ExpiresAt.After(time.Now()) {
		return fmt.Errorf("%w: story expired", ErrNotFound)
	}
	return storeErr("mark story viewed", s.stories.MarkSeen(ctx, storyID, viewerID))
}

func (s *ContentService) DeleteStory(ctx context.Context, storyID string, authorID uint) error {
	return storeErr("delete story", s.stories.DeleteStory(ctx, storyID, authorID))
}

// CleanupStories deletes expired stories
func (s *ContentService) CleanupStories(ctx context.Context) (int64, error) {
	n, err := s.stories.DeleteExpiredStories(ctx)
	return n, storeErr("delete expired stories", err)
}
