package group

import (
	"context"
	"testing"
	"time"

	"church_app_server/internal/dao/mysql/repository"
	"church_app_server/internal/dto/request"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/model"
	"church_app_server/internal/session"
	"church_app_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGroups struct {
	repository.GroupRepository
	rows map[string]*model.CommunityGroup
}

func (s *stubGroups) FindByUuid(uuid string) (*model.CommunityGroup, error) {
	if g, ok := s.rows[uuid]; ok {
		return g, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "not found")
}

func (s *stubGroups) Create(g *model.CommunityGroup) error {
	s.rows[g.Uuid] = g
	return nil
}

func (s *stubGroups) Update(g *model.CommunityGroup) error {
	s.rows[g.Uuid] = g
	return nil
}

type stubPosts struct {
	repository.GroupPostRepository
	rows []model.GroupPost
}

func (s *stubPosts) Create(p *model.GroupPost) error {
	p.ID = uint(len(s.rows) + 1)
	p.CreatedAt = time.Now()
	s.rows = append(s.rows, *p)
	return nil
}

func (s *stubPosts) FindRecentByGroup(groupId string, limit int) ([]repository.PostWithAuthor, error) {
	var out []repository.PostWithAuthor
	for i := len(s.rows) - 1; i >= 0 && len(out) < limit; i-- {
		p := s.rows[i]
		if p.GroupId == groupId {
			out = append(out, repository.PostWithAuthor{ID: p.ID, GroupId: p.GroupId, UserId: p.UserId, Content: p.Content, CreatedAt: p.CreatedAt})
		}
	}
	return out, nil
}

// stubMembers 只有 approved 中的用户能进入小组
type stubMembers struct {
	approved map[string]bool
}

func (s *stubMembers) CheckApproved(_ context.Context, sess session.Session, groupId string) error {
	if sess.IsGuest() {
		return errorx.ErrUnauthorized
	}
	if !s.approved[sess.UserID+":"+groupId] {
		return errorx.ErrPendingApproval
	}
	return nil
}

func (s *stubMembers) ListGroups(context.Context, session.Session) []respond.GroupView {
	return []respond.GroupView{{GroupId: "G1", MembersCount: 3}}
}

type recordingFeed struct {
	posts []respond.GroupPostView
}

func (r *recordingFeed) Broadcast(_ context.Context, p respond.GroupPostView) {
	r.posts = append(r.posts, p)
}

func simpleView(p repository.PostWithAuthor) respond.GroupPostView {
	return respond.GroupPostView{Id: p.ID, GroupId: p.GroupId, UserId: p.UserId, DisplayName: p.DisplayName, Content: p.Content}
}

func newTestService() (*groupService, *stubGroups, *stubPosts, *recordingFeed) {
	groups := &stubGroups{rows: map[string]*model.CommunityGroup{
		"G1": {Uuid: "G1", Name: "青年团契", MemberCount: 2},
	}}
	posts := &stubPosts{}
	feed := &recordingFeed{}
	repos := &repository.Repositories{Group: groups, GroupPost: posts}
	members := &stubMembers{approved: map[string]bool{"U1:G1": true}}
	return NewGroupService(repos, members, feed, simpleView), groups, posts, feed
}

func TestCreateGroupRequiresAdmin(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.CreateGroup(session.Member("U1"), request.CreateGroupRequest{Name: "x"})
	assert.Equal(t, errorx.CodeForbidden, errorx.GetCode(err))
}

func TestCreateGroupSanitizesDescription(t *testing.T) {
	svc, groups, _, _ := newTestService()
	view, err := svc.CreateGroup(session.Admin("A1"), request.CreateGroupRequest{
		Name:        " 诗班 ",
		Description: "<b>周六</b>排练<script>x()</script>",
		MemberCount: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "诗班", view.Name)
	assert.Equal(t, "周六排练", view.Description)
	assert.Equal(t, model.MembershipNone, view.Status)
	assert.Equal(t, "A1", groups.rows[view.GroupId].CreatedBy)
}

func TestUpdateMissingGroup(t *testing.T) {
	svc, _, _, _ := newTestService()
	req := request.UpdateGroupRequest{GroupId: "G404"}
	req.Name = "x"
	_, err := svc.UpdateGroup(session.Admin("A1"), req)
	assert.Equal(t, errorx.CodeNotFound, errorx.GetCode(err))
}

func TestPostsGatedOnApproval(t *testing.T) {
	svc, _, posts, feed := newTestService()
	ctx := context.Background()

	_, err := svc.CreatePost(ctx, session.Member("U2"), request.CreatePostRequest{GroupId: "G1", Content: "hello"})
	assert.ErrorIs(t, err, errorx.ErrPendingApproval)

	_, err = svc.ListPosts(ctx, session.Guest(), "G1")
	assert.ErrorIs(t, err, errorx.ErrUnauthorized)

	assert.Empty(t, posts.rows)
	assert.Empty(t, feed.posts)
}

func TestCreatePostBroadcasts(t *testing.T) {
	svc, _, _, feed := newTestService()
	ctx := context.Background()
	sess := session.Member("U1")
	sess.Profile = &model.Profile{Uuid: "U1", DisplayName: "Ruth"}

	view, err := svc.CreatePost(ctx, sess, request.CreatePostRequest{GroupId: "G1", Content: "本周为彼此代祷"})
	require.NoError(t, err)
	assert.Equal(t, "Ruth", view.DisplayName)
	require.Len(t, feed.posts, 1)
	assert.Equal(t, view.Id, feed.posts[0].Id)

	list, err := svc.ListPosts(ctx, sess, "G1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "本周为彼此代祷", list[0].Content)
}

func TestEmptyPostRejected(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.CreatePost(context.Background(), session.Member("U1"), request.CreatePostRequest{GroupId: "G1", Content: "<p></p>"})
	assert.Equal(t, errorx.CodeInvalidParam, errorx.GetCode(err))
}

func TestListGroupsAdmin(t *testing.T) {
	svc, _, _, _ := newTestService()
	_, err := svc.ListGroupsAdmin(context.Background(), session.Member("U1"))
	assert.ErrorIs(t, err, errorx.ErrForbidden)

	list, err := svc.ListGroupsAdmin(context.Background(), session.Admin("A1"))
	require.NoError(t, err)
	assert.Equal(t, 3, list[0].MembersCount)
}
