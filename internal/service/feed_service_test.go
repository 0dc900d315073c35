package service

import (
	"errors"
	"fmt"
	"testing"
)

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")

	if _, err := env.feed.CreatePost(alice, "", nil); !errors.Is(err, ErrInvalidPost) {
		t.Errorf("empty body error = %v, want ErrInvalidPost", err)
	}

	long := make([]byte, 501)
	for i := range long {
		long[i] = 'a'
	}
	if _, err := env.feed.CreatePost(alice, string(long), nil); !errors.Is(err, ErrInvalidPost) {
		t.Errorf("oversized body error = %v, want ErrInvalidPost", err)
	}

	if _, err := env.feed.CreatePost(alice, "hello", nil); err != nil {
		t.Errorf("valid post error = %v", err)
	}
}

func TestCreatePostRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	familyID := env.familyOf(t, "Smith", alice)

	if _, err := env.feed.CreatePost(mallory, "hi", &familyID); !errors.Is(err, ErrNotFamilyMember) {
		t.Errorf("CreatePost() error = %v, want ErrNotFamilyMember", err)
	}
}

func TestEditAndDeleteAuthorOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	post, err := env.feed.CreatePost(alice, "mine", nil)
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	if err := env.feed.EditPost(post.ID, bob, "stolen"); !errors.Is(err, ErrNotPostAuthor) {
		t.Errorf("EditPost() by non-author error = %v, want ErrNotPostAuthor", err)
	}
	if err := env.feed.DeletePost(post.ID, bob); !errors.Is(err, ErrNotPostAuthor) {
		t.Errorf("DeletePost() by non-author error = %v, want ErrNotPostAuthor", err)
	}

	if err := env.feed.EditPost(post.ID, alice, "edited"); err != nil {
		t.Fatalf("EditPost() error = %v", err)
	}
	if err := env.feed.DeletePost(post.ID, alice); err != nil {
		t.Fatalf("DeletePost() error = %v", err)
	}

	if err := env.feed.DeletePost(post.ID, alice); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("DeletePost() twice error = %v, want ErrPostNotFound", err)
	}
}

func TestFamilyFeedPagination(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	familyID := env.familyOf(t, "Smith", alice)

	// Page size is 3 in the test environment; 7 posts = 3 pages
	for i := 1; i <= 7; i++ {
		if _, err := env.feed.CreatePost(alice, fmt.Sprintf("post %d", i), &familyID); err != nil {
			t.Fatalf("CreatePost(%d) error = %v", i, err)
		}
	}

	page1, err := env.feed.FamilyFeed(alice, familyID, 1)
	if err != nil {
		t.Fatalf("FamilyFeed(1) error = %v", err)
	}
	if len(page1.Posts) != 3 || !page1.HasNext || page1.HasPrev {
		t.Errorf("page1 = %d posts, next=%v prev=%v; want 3, true, false",
			len(page1.Posts), page1.HasNext, page1.HasPrev)
	}
	if page1.Posts[0].Body != "post 7" {
		t.Errorf("newest post = %q, want post 7", page1.Posts[0].Body)
	}

	page3, err := env.feed.FamilyFeed(alice, familyID, 3)
	if err != nil {
		t.Fatalf("FamilyFeed(3) error = %v", err)
	}
	if len(page3.Posts) != 1 || page3.HasNext || !page3.HasPrev {
		t.Errorf("page3 = %d posts, next=%v prev=%v; want 1, false, true",
			len(page3.Posts), page3.HasNext, page3.HasPrev)
	}
}

func TestFamilyFeedMemberOnly(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	mallory := env.user(t, "mallory")
	familyID := env.familyOf(t, "Smith", alice)

	if _, err := env.feed.FamilyFeed(mallory, familyID, 1); !errors.Is(err, ErrNotFamilyMember) {
		t.Errorf("FamilyFeed() error = %v, want ErrNotFamilyMember", err)
	}
}

func TestHomeOverview(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	smith := env.familyOf(t, "Smith", alice)
	env.familyOf(t, "Jones", alice)

	if _, err := env.feed.CreatePost(alice, "older", &smith); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if _, err := env.feed.CreatePost(alice, "latest", &smith); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	previews, err := env.feed.HomeOverview(alice)
	if err != nil {
		t.Fatalf("HomeOverview() error = %v", err)
	}
	if len(previews) != 2 {
		t.Fatalf("got %d previews, want 2", len(previews))
	}

	for _, p := range previews {
		switch p.Family.Name {
		case "Smith":
			if p.LatestPost == nil || p.LatestPost.Body != "latest" {
				t.Errorf("Smith preview = %v, want the latest post", p.LatestPost)
			}
		case "Jones":
			if p.LatestPost != nil {
				t.Error("Jones has no posts, preview should be nil")
			}
		}
	}
}

func TestExploreFeed(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	smith := env.familyOf(t, "Smith", alice)
	jones := env.familyOf(t, "Jones", bob)

	if _, err := env.feed.CreatePost(alice, "smith news", &smith); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if _, err := env.feed.CreatePost(bob, "jones news", &jones); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if _, err := env.feed.CreatePost(alice, "my diary", nil); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	page, err := env.feed.ExploreFeed(1)
	if err != nil {
		t.Fatalf("ExploreFeed() error = %v", err)
	}
	if len(page.Posts) != 2 {
		t.Fatalf("got %d posts, want the 2 shared ones", len(page.Posts))
	}
	for _, p := range page.Posts {
		if p.FamilyID == nil {
			t.Errorf("private post %q leaked into explore", p.Body)
		}
	}
	if page.Posts[0].Body != "jones news" {
		t.Errorf("newest post = %q, want jones news", page.Posts[0].Body)
	}
}

func TestExploreFeedPagination(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	smith := env.familyOf(t, "Smith", alice)

	// Page size is 3 in the test environment; 4 posts = 2 pages
	for i := 1; i <= 4; i++ {
		if _, err := env.feed.CreatePost(alice, fmt.Sprintf("post %d", i), &smith); err != nil {
			t.Fatalf("CreatePost(%d) error = %v", i, err)
		}
	}

	page1, err := env.feed.ExploreFeed(1)
	if err != nil {
		t.Fatalf("ExploreFeed(1) error = %v", err)
	}
	if len(page1.Posts) != 3 || !page1.HasNext || page1.HasPrev {
		t.Errorf("page1 = %d posts, next=%v prev=%v; want 3, true, false",
			len(page1.Posts), page1.HasNext, page1.HasPrev)
	}

	page2, err := env.feed.ExploreFeed(2)
	if err != nil {
		t.Fatalf("ExploreFeed(2) error = %v", err)
	}
	if len(page2.Posts) != 1 || page2.HasNext || !page2.HasPrev {
		t.Errorf("page2 = %d posts, next=%v prev=%v; want 1, false, true",
			len(page2.Posts), page2.HasNext, page2.HasPrev)
	}
}

func TestUserPostsVisibility(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	smith := env.familyOf(t, "Smith", alice)

	if _, err := env.feed.CreatePost(alice, "shared", &smith); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	if _, err := env.feed.CreatePost(alice, "private", nil); err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}

	// Alice sees both of her posts
	own, err := env.feed.UserPosts(alice, "alice", 1)
	if err != nil {
		t.Fatalf("UserPosts() error = %v", err)
	}
	if len(own.Posts) != 2 {
		t.Errorf("own view = %d posts, want 2", len(own.Posts))
	}

	// Bob sees only the shared one
	theirs, err := env.feed.UserPosts(bob, "alice", 1)
	if err != nil {
		t.Fatalf("UserPosts() error = %v", err)
	}
	if len(theirs.Posts) != 1 || theirs.Posts[0].Body != "shared" {
		t.Errorf("other view = %d posts, want only the shared post", len(theirs.Posts))
	}

	if _, err := env.feed.UserPosts(bob, "ghost", 1); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("UserPosts(ghost) error = %v, want ErrUserNotFound", err)
	}
}

func TestFollowRules(t *testing.T) {
	env := newTestEnv(t)
	alice := env.user(t, "alice")
	env.user(t, "bob")

	if err := env.feed.Follow(alice, "alice"); !errors.Is(err, ErrSelfFollow) {
		t.Errorf("self follow error = %v, want ErrSelfFollow", err)
	}
	if err := env.feed.Follow(alice, "ghost"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("follow unknown error = %v, want ErrUserNotFound", err)
	}
	if err := env.feed.Follow(alice, "bob"); err != nil {
		t.Fatalf("Follow() error = %v", err)
	}
	if err := env.feed.Follow(alice, "bob"); err != nil {
		t.Fatalf("repeat Follow() error = %v", err)
	}

	profile, err := env.feed.Profile("bob")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if profile.FollowerCount != 1 {
		t.Errorf("bob followers = %d, want 1", profile.FollowerCount)
	}

	if err := env.feed.Unfollow(alice, "bob"); err != nil {
		t.Fatalf("Unfollow() error = %v", err)
	}
}
