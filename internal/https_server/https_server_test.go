package https_server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"church_app_server/internal/config"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/handler"
	"church_app_server/internal/model"
	"church_app_server/internal/service"
	"church_app_server/internal/service/feed"
	"church_app_server/internal/session"
	"church_app_server/pkg/errorx"
	"church_app_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubResolver map[string]session.Session

func (r stubResolver) Resolve(userID string) (session.Session, error) {
	if sess, ok := r[userID]; ok {
		return sess, nil
	}
	return session.Session{}, errorx.New(errorx.CodeUnauthorized, "账号已被禁用")
}

type stubMembership struct {
	service.MembershipService
}

func (stubMembership) ListGroups(_ context.Context, sess session.Session) []respond.GroupView {
	status := model.MembershipNone
	if !sess.IsGuest() {
		status = model.MembershipApproved
	}
	return []respond.GroupView{{GroupId: "G1", Name: "Prayer", MembersCount: 12, Status: status, IsMember: !sess.IsGuest()}}
}

func (stubMembership) CheckApproved(_ context.Context, sess session.Session, groupId string) error {
	if groupId != "G1" {
		return errorx.ErrPendingApproval
	}
	return nil
}

type stubHome struct{}

func (stubHome) Feed(context.Context) *respond.HomeRespond { return &respond.HomeRespond{} }

type fixture struct {
	server  *httptest.Server
	feedSvc service.FeedService
	hub     *feed.Hub
	cancel  context.CancelFunc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	jwt.Init("smoke-secret-smoke-secret-smoke-secret", 15, 168)
	require.NoError(t, handler.InitTrans("zh"))

	hub := feed.NewHub()
	feedSvc := feed.NewFeedService(hub, feed.NewChannelBroker(hub))
	ctx, cancel := context.WithCancel(context.Background())
	go feedSvc.Run(ctx)

	svcs := &service.Services{
		Membership: stubMembership{},
		Feed:       feedSvc,
		Home:       stubHome{},
	}
	cfg := &config.Config{}
	cfg.MainConfig.Mode = "dev"
	cfg.StaticSrcConfig.StaticAvatarPath = t.TempDir()
	cfg.StaticSrcConfig.StaticMediaPath = t.TempDir()

	engine := Init(cfg, handler.NewHandlers(svcs), stubResolver{
		"U1": session.Member("U1"),
		"A1": session.Admin("A1"),
	})
	f := &fixture{server: httptest.NewServer(engine), feedSvc: feedSvc, hub: hub, cancel: cancel}
	t.Cleanup(func() {
		f.server.Close()
		cancel()
		feedSvc.Close()
	})
	return f
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.GenerateAccessToken(userID)
	require.NoError(t, err)
	return token
}

func get(t *testing.T, url, token string) (int, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, url, nil)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env map[string]any
	require.NoError(t, json.NewDecoder(bytes.NewReader(body)).Decode(&env), string(body))
	return resp.StatusCode, env
}

func TestPublicRoutesServeGuests(t *testing.T) {
	f := newFixture(t)

	code, env := get(t, f.server.URL+"/home", "")
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, errorx.CodeSuccess, env["code"])

	code, env = get(t, f.server.URL+"/groups", "")
	assert.Equal(t, http.StatusOK, code)
	groups := env["data"].([]any)
	require.Len(t, groups, 1)
	assert.Equal(t, "none", groups[0].(map[string]any)["status"])

	_, env = get(t, f.server.URL+"/groups", bearer(t, "U1"))
	assert.Equal(t, "approved", env["data"].([]any)[0].(map[string]any)["status"])
}

func TestDisabledAccountIsRejected(t *testing.T) {
	f := newFixture(t)

	code, env := get(t, f.server.URL+"/groups", bearer(t, "U_DISABLED"))
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.EqualValues(t, errorx.CodeUnauthorized, env["code"])
}

func TestGroupFeedDeliversPosts(t *testing.T) {
	f := newFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/group?groupId=G1&token=" + bearer(t, "U1")

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	post := respond.GroupPostView{Id: 1, GroupId: "G1", UserId: "U2", Content: "Amen"}
	// 连接在握手之后注册
	require.Eventually(t, func() bool { return f.hub.Online("G1") == 1 }, 2*time.Second, 20*time.Millisecond)
	f.feedSvc.Broadcast(context.Background(), post)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var got respond.GroupPostView
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, "Amen", got.Content)
	assert.Equal(t, "G1", got.GroupId)
}

func TestGroupFeedRejectsPendingMember(t *testing.T) {
	f := newFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/group?groupId=G2&token=" + bearer(t, "U1")

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()

	var env map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.EqualValues(t, errorx.CodePendingApproval, env["code"])
}

func TestGroupFeedClosedAfterKick(t *testing.T) {
	f := newFixture(t)
	wsURL := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/group?groupId=G1&token=" + bearer(t, "U1")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return f.hub.Online("G1") == 1 }, 2*time.Second, 20*time.Millisecond)

	f.feedSvc.Kick("U1", "G1")

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNoStatusReceived), "unexpected error: %v", err)
}
