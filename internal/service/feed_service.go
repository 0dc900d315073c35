package service

import (
	"errors"
	"strings"

	"github.com/christianmesinas/famplan/internal/models"
	"github.com/christianmesinas/famplan/internal/repository"
)

var (
	ErrPostNotFound  = errors.New("post not found")
	ErrNotPostAuthor = errors.New("not the author of this post")
	ErrInvalidPost   = errors.New("post body must be between 1 and 500 characters")
	ErrSelfFollow    = errors.New("cannot follow yourself")
)

// FeedPage is one page of a reverse-chronological feed
type FeedPage struct {
	Posts   []models.FeedPost `json:"posts"`
	Page    int               `json:"page"`
	HasNext bool              `json:"has_next"`
	HasPrev bool              `json:"has_prev"`
}

// FeedService handles posts, feeds and the follow graph
type FeedService struct {
	postRepo   *repository.PostRepository
	userRepo   *repository.UserRepository
	familyRepo *repository.FamilyRepository
	familySvc  *FamilyService
	pageSize   int
}

// NewFeedService creates a new feed service
func NewFeedService(postRepo *repository.PostRepository, userRepo *repository.UserRepository, familyRepo *repository.FamilyRepository, familySvc *FamilyService, pageSize int) *FeedService {
	if pageSize <= 0 {
		pageSize = 25
	}
	return &FeedService{
		postRepo:   postRepo,
		userRepo:   userRepo,
		familyRepo: familyRepo,
		familySvc:  familySvc,
		pageSize:   pageSize,
	}
}

func validPostBody(body string) bool {
	trimmed := strings.TrimSpace(body)
	return trimmed != "" && len(trimmed) <= models.MaxPostLength
}

// CreatePost publishes a post. A nil familyID makes it private to the
// author; a family target requires membership.
func (s *FeedService) CreatePost(authorID int64, body string, familyID *int64) (*models.Post, error) {
	if !validPostBody(body) {
		return nil, ErrInvalidPost
	}
	if familyID != nil {
		if err := s.familySvc.VerifyAccess(authorID, *familyID); err != nil {
			return nil, err
		}
	}
	return s.postRepo.CreatePost(authorID, strings.TrimSpace(body), familyID)
}

// EditPost changes a post's body. Author-only.
func (s *FeedService) EditPost(postID, actorID int64, body string) error {
	if !validPostBody(body) {
		return ErrInvalidPost
	}
	post, err := s.postRepo.GetPostByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != actorID {
		return ErrNotPostAuthor
	}
	return s.postRepo.UpdatePost(postID, strings.TrimSpace(body))
}

// DeletePost removes a post. Author-only.
func (s *FeedService) DeletePost(postID, actorID int64) error {
	post, err := s.postRepo.GetPostByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.UserID != actorID {
		return ErrNotPostAuthor
	}
	return s.postRepo.DeletePost(postID)
}

// page fetches pageSize+1 rows to learn whether a next page exists
func (s *FeedService) page(page int, fetch func(limit, offset int) ([]models.FeedPost, error)) (*FeedPage, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * s.pageSize

	posts, err := fetch(s.pageSize+1, offset)
	if err != nil {
		return nil, err
	}

	hasNext := len(posts) > s.pageSize
	if hasNext {
		posts = posts[:s.pageSize]
	}
	if posts == nil {
		posts = []models.FeedPost{}
	}

	return &FeedPage{
		Posts:   posts,
		Page:    page,
		HasNext: hasNext,
		HasPrev: page > 1,
	}, nil
}

// FamilyFeed returns one page of a family's feed for the viewer.
// Member-only. The viewer's private posts intermix only into their own
// view.
func (s *FeedService) FamilyFeed(viewerID, familyID int64, pageNum int) (*FeedPage, error) {
	if err := s.familySvc.VerifyAccess(viewerID, familyID); err != nil {
		return nil, err
	}
	return s.page(pageNum, func(limit, offset int) ([]models.FeedPost, error) {
		return s.postRepo.FamilyFeedPage(familyID, viewerID, limit, offset)
	})
}

// FollowingFeed returns one page of posts by followed users and the
// viewer, excluding other users' private posts.
func (s *FeedService) FollowingFeed(viewerID int64, pageNum int) (*FeedPage, error) {
	return s.page(pageNum, func(limit, offset int) ([]models.FeedPost, error) {
		return s.postRepo.FollowingFeedPage(viewerID, limit, offset)
	})
}

// HomeOverview returns, for each family the viewer belongs to, its
// single most recent post.
func (s *FeedService) HomeOverview(viewerID int64) ([]models.FamilyPreview, error) {
	families, err := s.familyRepo.ListUserFamilies(viewerID)
	if err != nil {
		return nil, err
	}

	previews := make([]models.FamilyPreview, 0, len(families))
	for i := range families {
		latest, err := s.postRepo.LatestFamilyPost(families[i].ID)
		if err != nil {
			return nil, err
		}
		previews = append(previews, models.FamilyPreview{
			Family:     &families[i],
			LatestPost: latest,
		})
	}
	return previews, nil
}

// ExploreFeed returns one page of all shared posts across families
func (s *FeedService) ExploreFeed(pageNum int) (*FeedPage, error) {
	return s.page(pageNum, func(limit, offset int) ([]models.FeedPost, error) {
		return s.postRepo.ExplorePage(limit, offset)
	})
}

// UserPosts returns one page of the named user's posts. Private posts
// show up only when the viewer is the author.
func (s *FeedService) UserPosts(viewerID int64, username string, pageNum int) (*FeedPage, error) {
	target, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrUserNotFound
	}
	return s.page(pageNum, func(limit, offset int) ([]models.FeedPost, error) {
		return s.postRepo.UserPostsPage(target.ID, viewerID, limit, offset)
	})
}

// Follow makes the user follow the target. Idempotent; self-follow is
// rejected.
func (s *FeedService) Follow(userID int64, targetUsername string) error {
	target, err := s.userRepo.GetUserByUsername(targetUsername)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if target.ID == userID {
		return ErrSelfFollow
	}
	return s.userRepo.Follow(userID, target.ID)
}

// Unfollow removes the follow edge. Idempotent.
func (s *FeedService) Unfollow(userID int64, targetUsername string) error {
	target, err := s.userRepo.GetUserByUsername(targetUsername)
	if err != nil {
		return err
	}
	if target == nil {
		return ErrUserNotFound
	}
	if target.ID == userID {
		return ErrSelfFollow
	}
	return s.userRepo.Unfollow(userID, target.ID)
}

// Profile returns a user's public profile with follow and post counts
func (s *FeedService) Profile(username string) (*models.Profile, error) {
	user, err := s.userRepo.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	followers, err := s.userRepo.FollowerCount(user.ID)
	if err != nil {
		return nil, err
	}
	following, err := s.userRepo.FollowingCount(user.ID)
	if err != nil {
		return nil, err
	}
	postCount, err := s.postRepo.CountUserPosts(user.ID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		User:           user,
		FollowerCount:  followers,
		FollowingCount: following,
		PostCount:      postCount,
	}, nil
}
