package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"yatube/internal/adapters/database"
	"yatube/internal/adapters/httpapi"
	"yatube/internal/adapters/media"
	redisAdapter "yatube/internal/adapters/redis"
	"yatube/internal/core/comment"
	commentapp "yatube/internal/core/comment/service"
	"yatube/internal/core/follow"
	followapp "yatube/internal/core/follow/service"
	groupapp "yatube/internal/core/group/service"
	"yatube/internal/core/post"
	postapp "yatube/internal/core/post/service"
	"yatube/internal/core/user"
	userapp "yatube/internal/core/user/service"
	postPort "yatube/internal/ports/post"
	"yatube/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const perPage = 10

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type testEnv struct {
	db        *gorm.DB
	router    *gin.Engine
	cache     *redisAdapter.PageCacheRedis
	users     *userapp.UserService
	mediaRoot string
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := redisAdapter.NewPageCacheRedis(client)
	mediaRoot := t.TempDir()

	userRepo := database.NewUserRepositoryDatabase(db)
	groupRepo := database.NewGroupRepositoryDatabase(db)
	postRepo := database.NewPostRepositoryDatabase(db)
	commentRepo := database.NewCommentRepositoryDatabase(db)
	followRepo := database.NewFollowRepositoryDatabase(db)

	users := userapp.NewUserService(userRepo, []byte("test-secret"))
	router := httpapi.SetupRoutes(
		users,
		postapp.NewPostService(postRepo, groupRepo, userRepo, media.NewImageStorageLocal(mediaRoot), perPage),
		groupapp.NewGroupService(groupRepo),
		commentapp.NewCommentService(commentRepo, postRepo),
		followapp.NewFollowService(followRepo, userRepo),
		httpapi.Options{PageCache: cache, IndexCacheTTL: 20 * time.Second, MediaRoot: mediaRoot},
	)
	return &testEnv{db: db, router: router, cache: cache, users: users, mediaRoot: mediaRoot}
}

func (e *testEnv) do(t *testing.T, method, target string, body io.Reader, contentType string, as *user.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if as != nil {
		res, err := e.users.LoginUser(context.Background(), as.Username, testutil.Password)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: "token", Value: res.Token})
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) get(t *testing.T, target string, as *user.User) *httptest.ResponseRecorder {
	return e.do(t, http.MethodGet, target, nil, "", as)
}

func (e *testEnv) postForm(t *testing.T, target string, values url.Values, as *user.User) *httptest.ResponseRecorder {
	return e.do(t, http.MethodPost, target, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded", as)
}

func (e *testEnv) countPosts(t *testing.T) int64 {
	var n int64
	require.NoError(t, e.db.Model(&post.Post{}).Count(&n).Error)
	return n
}

type pageBody struct {
	PageObj        postPort.PageDTO `json:"page_obj"`
	Following      bool             `json:"following"`
	FollowersCount int64            `json:"followers_count"`
}

type formBody struct {
	Form struct {
		Values map[string]string `json:"values"`
		Errors map[string]string `json:"errors"`
	} `json:"form"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPublicPages(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	g := testutil.CreateGroup(t, e.db, "test-slug")
	p := testutil.CreatePost(t, e.db, author, g, "Тестовый пост")

	cases := map[string]int{
		"/":                             http.StatusOK,
		"/group/test-slug/":             http.StatusOK,
		"/profile/author/":              http.StatusOK,
		"/posts/" + p.ID.String():       http.StatusOK,
		"/unexisting_page/":             http.StatusNotFound,
		"/group/missing/":               http.StatusNotFound,
		"/profile/ghost/":               http.StatusNotFound,
		"/posts/not-a-uuid":             http.StatusNotFound,
		"/posts/" + p.AuthorID.String(): http.StatusNotFound,
	}
	for target, status := range cases {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, status, e.get(t, target, nil).Code)
		})
	}
}

func TestProtectedPagesRedirectAnonymous(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	p := testutil.CreatePost(t, e.db, author, nil, "text")

	for _, target := range []string{
		"/create/",
		"/posts/" + p.ID.String() + "/edit/",
		"/follow/",
		"/profile/author/follow/",
		"/profile/author/unfollow/",
	} {
		t.Run(target, func(t *testing.T) {
			w := e.get(t, target, nil)
			assert.Equal(t, http.StatusFound, w.Code)
			assert.Equal(t, "/auth/login/?next="+url.QueryEscape(target), w.Header().Get("Location"))
		})
	}

	w := e.postForm(t, "/create/", url.Values{"text": {"anon"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, int64(1), e.countPosts(t))
}

func TestCreatePost(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	g := testutil.CreateGroup(t, e.db, "cats")

	w := e.get(t, "/create/", author)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_edit":false`)

	w = e.postForm(t, "/create/", url.Values{"text": {"  New post  "}, "group": {g.ID.String()}}, author)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/author/", w.Header().Get("Location"))

	var created post.Post
	require.NoError(t, e.db.First(&created).Error)
	assert.Equal(t, "New post", created.Text)
	require.NotNil(t, created.GroupID)
	assert.Equal(t, g.ID, *created.GroupID)
	assert.Equal(t, author.ID, created.AuthorID)
}

func TestCreatePostInvalidForm(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")

	cases := []struct {
		name   string
		values url.Values
		field  string
		msg    string
	}{
		{"missing text", url.Values{}, "text", "This field is required."},
		{"blank text", url.Values{"text": {"   "}}, "text", "This field is required."},
		{"unknown group", url.Values{"text": {"hi"}, "group": {"00000000-0000-0000-0000-000000000001"}}, "group", "Select a valid choice. That choice is not one of the available choices."},
		{"malformed group", url.Values{"text": {"hi"}, "group": {"nope"}}, "group", "Select a valid choice. That choice is not one of the available choices."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.postForm(t, "/create/", tc.values, author)
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decode[formBody](t, w)
			assert.Equal(t, tc.msg, body.Form.Errors[tc.field])
		})
	}
	assert.Zero(t, e.countPosts(t))
}

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}

func multipartPost(t *testing.T, text, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("text", text))
	part, err := mw.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestCreatePostWithImage(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")

	body, ct := multipartPost(t, "with picture", "small.gif", smallGIF)
	w := e.do(t, http.MethodPost, "/create/", body, ct, author)
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	var created post.Post
	require.NoError(t, e.db.First(&created).Error)
	assert.True(t, strings.HasPrefix(created.Image, "posts/"), created.Image)
	assert.FileExists(t, filepath.Join(e.mediaRoot, created.Image))

	served := e.get(t, "/media/"+created.Image, nil)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, smallGIF, served.Body.Bytes())

	body, ct = multipartPost(t, "not a picture", "notes.gif", []byte("plain text pretending"))
	w = e.do(t, http.MethodPost, "/create/", body, ct, author)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode[formBody](t, w).Form.Errors["image"], "Upload a valid image.")
	assert.Equal(t, int64(1), e.countPosts(t))
}

func TestEditPost(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	other := testutil.CreateUser(t, e.db, "other")
	p := testutil.CreatePost(t, e.db, author, nil, "original")
	detail := "/posts/" + p.ID.String()

	t.Run("non-author is redirected and nothing changes", func(t *testing.T) {
		w := e.get(t, detail+"/edit/", other)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detail, w.Header().Get("Location"))

		w = e.postForm(t, detail+"/edit/", url.Values{"text": {"hacked"}}, other)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detail, w.Header().Get("Location"))

		var got post.Post
		require.NoError(t, e.db.First(&got, "id = ?", p.ID).Error)
		assert.Equal(t, "original", got.Text)
	})

	t.Run("author edits", func(t *testing.T) {
		w := e.get(t, detail+"/edit/", author)
		require.Equal(t, http.StatusOK, w.Code)
		body := decode[formBody](t, w)
		assert.Equal(t, "original", body.Form.Values["text"])
		assert.Contains(t, w.Body.String(), `"is_edit":true`)

		w = e.postForm(t, detail+"/edit/", url.Values{"text": {"edited"}}, author)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, detail, w.Header().Get("Location"))

		var got post.Post
		require.NoError(t, e.db.First(&got, "id = ?", p.ID).Error)
		assert.Equal(t, "edited", got.Text)
	})

	t.Run("invalid edit re-renders", func(t *testing.T) {
		w := e.postForm(t, detail+"/edit/", url.Values{"text": {""}}, author)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDeletePost(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	other := testutil.CreateUser(t, e.db, "other")
	p := testutil.CreatePost(t, e.db, author, nil, "bye")
	require.NoError(t, e.db.Create(&comment.Comment{PostID: p.ID, AuthorID: other.ID, Text: "hi"}).Error)
	target := "/posts/" + p.ID.String() + "/delete/"

	w := e.postForm(t, target, nil, other)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/posts/"+p.ID.String(), w.Header().Get("Location"))
	assert.Equal(t, int64(1), e.countPosts(t))

	w = e.postForm(t, target, nil, author)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/profile/author/", w.Header().Get("Location"))
	assert.Zero(t, e.countPosts(t))

	var comments int64
	require.NoError(t, e.db.Model(&comment.Comment{}).Count(&comments).Error)
	assert.Zero(t, comments)
}

func TestComments(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	reader := testutil.CreateUser(t, e.db, "reader")
	p := testutil.CreatePost(t, e.db, author, nil, "commented")
	detail := "/posts/" + p.ID.String()

	w := e.postForm(t, detail+"/comment/", url.Values{"text": {"anonymous"}}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/?next="))

	w = e.postForm(t, detail+"/comment/", url.Values{"text": {""}}, reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	w = e.postForm(t, detail+"/comment/", url.Values{"text": {"Nice post"}}, reader)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, detail, w.Header().Get("Location"))

	var body struct {
		Comments []struct {
			Text   string `json:"text"`
			Author struct {
				Username string `json:"username"`
			} `json:"author"`
		} `json:"comments"`
	}
	w = e.get(t, detail, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Comments, 1)
	assert.Equal(t, "Nice post", body.Comments[0].Text)
	assert.Equal(t, "reader", body.Comments[0].Author.Username)

	w = e.postForm(t, "/posts/"+author.ID.String()+"/comment/", url.Values{"text": {"lost"}}, reader)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFollowAndFeed(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	fan := testutil.CreateUser(t, e.db, "fan")
	stranger := testutil.CreateUser(t, e.db, "stranger")
	followCount := func() int64 {
		var n int64
		require.NoError(t, e.db.Model(&follow.Follow{}).Count(&n).Error)
		return n
	}

	for i := 0; i < 2; i++ {
		w := e.get(t, "/profile/author/follow/", fan)
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/profile/author/", w.Header().Get("Location"))
	}
	assert.Equal(t, int64(1), followCount())

	w := e.get(t, "/profile/fan/follow/", fan)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, int64(1), followCount())

	profile := decode[pageBody](t, e.get(t, "/profile/author/", fan))
	assert.True(t, profile.Following)
	assert.Equal(t, int64(1), profile.FollowersCount)
	assert.False(t, decode[pageBody](t, e.get(t, "/profile/author/", stranger)).Following)

	p := testutil.CreatePost(t, e.db, author, nil, "for followers")
	feed := decode[pageBody](t, e.get(t, "/follow/", fan))
	require.Len(t, feed.PageObj.Posts, 1)
	assert.Equal(t, p.ID.String(), feed.PageObj.Posts[0].ID)
	assert.Empty(t, decode[pageBody](t, e.get(t, "/follow/", stranger)).PageObj.Posts)

	for i := 0; i < 2; i++ {
		w = e.get(t, "/profile/author/unfollow/", fan)
		assert.Equal(t, http.StatusFound, w.Code)
	}
	assert.Zero(t, followCount())
	assert.Empty(t, decode[pageBody](t, e.get(t, "/follow/", fan)).PageObj.Posts)

	assert.Equal(t, http.StatusNotFound, e.get(t, "/profile/ghost/follow/", fan).Code)
}

func TestPagination(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	g := testutil.CreateGroup(t, e.db, "busy")
	for i := 0; i < perPage+3; i++ {
		testutil.CreatePost(t, e.db, author, g, fmt.Sprintf("post %d", i))
	}

	cases := []struct {
		query  string
		number int
		len    int
	}{
		{"", 1, perPage},
		{"?page=2", 2, 3},
		{"?page=99", 2, 3},
		{"?page=0", 1, perPage},
		{"?page=abc", 1, perPage},
	}
	for _, base := range []string{"/", "/group/busy/", "/profile/author/"} {
		for _, tc := range cases {
			t.Run(base+tc.query, func(t *testing.T) {
				w := e.get(t, base+tc.query, nil)
				require.Equal(t, http.StatusOK, w.Code)
				page := decode[pageBody](t, w).PageObj
				assert.Equal(t, tc.number, page.Number)
				assert.Equal(t, 2, page.NumPages)
				assert.Equal(t, int64(perPage+3), page.Count)
				assert.Len(t, page.Posts, tc.len)
			})
		}
	}
}

func TestIndexIsCached(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	testutil.CreatePost(t, e.db, author, nil, "first")

	before := e.get(t, "/", nil)
	require.Equal(t, http.StatusOK, before.Code)

	testutil.CreatePost(t, e.db, author, nil, "second")
	cached := e.get(t, "/", nil)
	assert.Equal(t, before.Body.String(), cached.Body.String())
	assert.Len(t, decode[pageBody](t, cached).PageObj.Posts, 1)

	require.NoError(t, e.cache.Clear(context.Background()))
	fresh := e.get(t, "/", nil)
	assert.Len(t, decode[pageBody](t, fresh).PageObj.Posts, 2)
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)

	signup := url.Values{
		"name":     {"Leo"},
		"family":   {"Tolstoy"},
		"username": {"leo"},
		"email":    {"leo@example.com"},
		"password": {"war-and-peace"},
	}
	w := e.postForm(t, "/auth/signup/", signup, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, http.StatusConflict, e.postForm(t, "/auth/signup/", signup, nil).Code)

	short := url.Values{"name": {"A"}, "family": {"B"}, "username": {"ab"}, "password": {"short"}}
	w = e.postForm(t, "/auth/signup/", short, nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Ensure this value has at least 8 characters.", decode[formBody](t, w).Form.Errors["password"])

	w = e.get(t, "/auth/login/?next=%2Fcreate%2F", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/create/", decode[formBody](t, w).Form.Values["next"])

	bad := e.postForm(t, "/auth/login/", url.Values{"username": {"leo"}, "password": {"wrong-password"}}, nil)
	assert.Equal(t, http.StatusUnauthorized, bad.Code)

	w = e.postForm(t, "/auth/login/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}, "next": {"/create/"}}, nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/create/", w.Header().Get("Location"))
	var token *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "token" {
			token = c
		}
	}
	require.NotNil(t, token)

	req := httptest.NewRequest(http.MethodGet, "/create/", nil)
	req.AddCookie(token)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w = e.postForm(t, "/auth/login/", url.Values{"username": {"leo"}, "password": {"war-and-peace"}, "next": {"//evil.example"}}, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)

	w = e.get(t, "/auth/logout/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
}

func TestSignupRejectsUnsafeUsername(t *testing.T) {
	e := newEnv(t)

	for _, name := range []string{"ann/x", "ann x", "ann?x", "ann#x"} {
		t.Run(name, func(t *testing.T) {
			w := e.postForm(t, "/auth/signup/", url.Values{
				"name":     {"Ann"},
				"family":   {"Lee"},
				"username": {name},
				"password": {"long-enough"},
			}, nil)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			body := decode[formBody](t, w)
			assert.Contains(t, body.Form.Errors["username"], "Enter a valid username.")
			assert.Equal(t, name, body.Form.Values["username"])
		})
	}

	var users int64
	require.NoError(t, e.db.Model(&user.User{}).Count(&users).Error)
	assert.Zero(t, users)

	w := e.postForm(t, "/auth/signup/", url.Values{
		"name":     {"Ann"},
		"family":   {"Lee"},
		"username": {"ann.lee+1"},
		"password": {"long-enough"},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, http.StatusOK, e.get(t, "/profile/ann.lee+1/", nil).Code)
}

func TestTokenOfDeletedUserIsAnonymous(t *testing.T) {
	e := newEnv(t)
	author := testutil.CreateUser(t, e.db, "author")
	gone := testutil.CreateUser(t, e.db, "gone")

	res, err := e.users.LoginUser(context.Background(), gone.Username, testutil.Password)
	require.NoError(t, err)
	require.NoError(t, e.db.Delete(gone).Error)

	send := func(method, target string, body io.Reader) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, target, body)
		if body != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
		req.AddCookie(&http.Cookie{Name: "token", Value: res.Token})
		w := httptest.NewRecorder()
		e.router.ServeHTTP(w, req)
		return w
	}

	w := send(http.MethodPost, "/create/", strings.NewReader(url.Values{"text": {"ghost post"}}.Encode()))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next="+url.QueryEscape("/create/"), w.Header().Get("Location"))
	assert.Zero(t, e.countPosts(t))

	w = send(http.MethodGet, "/profile/author/follow/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Location"), "/auth/login/?next="))

	var follows int64
	require.NoError(t, e.db.Model(&follow.Follow{}).Where("author_id = ?", author.ID).Count(&follows).Error)
	assert.Zero(t, follows)
}
