package membership

import (
	"context"
	"errors"
	"sync"
	"testing"

	"church_app_server/internal/dao/mysql/repository"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/infrastructure/mq"
	"church_app_server/internal/model"
	"church_app_server/internal/session"
	"church_app_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	g1 = model.CommunityGroup{Uuid: "G1", Name: "Youth", MemberCount: 3}
	g2 = model.CommunityGroup{Uuid: "G2", Name: "Choir", MemberCount: 0}

	userA = session.Member("UA")
	userB = session.Member("UB")
	admin = session.Admin("UADMIN")
)

func viewOf(t *testing.T, views []respond.GroupView, groupId string) respond.GroupView {
	t.Helper()
	for _, v := range views {
		if v.GroupId == groupId {
			return v
		}
	}
	t.Fatalf("group %s not in list", groupId)
	return respond.GroupView{}
}

func TestListGroupsWithoutRowsIsNone(t *testing.T) {
	f := newFixture(t, g1, g2)
	views := f.svc.ListGroups(context.Background(), userA)
	require.Len(t, views, 2)
	for _, v := range views {
		assert.Equal(t, model.MembershipNone, v.Status)
		assert.False(t, v.IsMember)
	}
	assert.Equal(t, 3, viewOf(t, views, "G1").MembersCount)
}

func TestListGroupsGuestSeesNone(t *testing.T) {
	f := newFixture(t, g1)
	_, err := f.svc.RequestJoin(context.Background(), userA, "G1")
	require.NoError(t, err)

	views := f.svc.ListGroups(context.Background(), session.Guest())
	assert.Equal(t, model.MembershipNone, viewOf(t, views, "G1").Status)
}

func TestListGroupsNeverFails(t *testing.T) {
	f := newFixture(t, g1)
	f.gw.groupsErr = errors.New("connection refused")

	views := f.svc.ListGroups(context.Background(), userA)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestRequestJoinRejectsGuest(t *testing.T) {
	f := newFixture(t, g1)
	views, err := f.svc.RequestJoin(context.Background(), session.Guest(), "G1")
	assert.Nil(t, views)
	assert.Equal(t, errorx.KindUnauthorized, errorx.KindOf(err))
	assert.Equal(t, msgLoginToJoin, err.(*errorx.CodeError).Msg)
	assert.Zero(t, f.gw.upserts)
	assert.Empty(t, f.publisher.types())
}

func TestRequestJoinUnknownGroup(t *testing.T) {
	f := newFixture(t, g1)
	_, err := f.svc.RequestJoin(context.Background(), userA, "NOPE")
	assert.True(t, errorx.IsNotFound(err))
}

func TestRequestJoinIsIdempotent(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()

	views, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipPending, viewOf(t, views, "G1").Status)

	_, err = f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)

	_, n := f.gw.rowFor("G1", "UA")
	assert.Equal(t, 1, n)
}

func TestRequestJoinNeverDemotesApproved(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()

	_, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	id, _ := f.gw.rowFor("G1", "UA")
	require.NoError(t, f.svc.Approve(ctx, admin, id))

	views, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipApproved, viewOf(t, views, "G1").Status)
}

func TestConcurrentJoinsCollapse(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.RequestJoin(ctx, userA, "G1")
		}()
	}
	wg.Wait()

	_, n := f.gw.rowFor("G1", "UA")
	assert.Equal(t, 1, n)
}

func TestApproveCountsMember(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()

	before := viewOf(t, f.svc.ListGroups(ctx, userA), "G1").MembersCount
	_, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	id, _ := f.gw.rowFor("G1", "UA")

	require.NoError(t, f.svc.Approve(ctx, admin, id))

	v := viewOf(t, f.svc.ListGroups(ctx, userA), "G1")
	assert.Equal(t, model.MembershipApproved, v.Status)
	assert.True(t, v.IsMember)
	assert.Equal(t, before+1, v.MembersCount)
}

func TestDeclinePendingKeepsCount(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()

	_, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	before := viewOf(t, f.svc.ListGroups(ctx, userA), "G1").MembersCount
	id, _ := f.gw.rowFor("G1", "UA")

	require.NoError(t, f.svc.Decline(ctx, admin, id))

	v := viewOf(t, f.svc.ListGroups(ctx, userA), "G1")
	assert.Equal(t, model.MembershipNone, v.Status)
	assert.Equal(t, before, v.MembersCount)
	_, n := f.gw.rowFor("G1", "UA")
	assert.Zero(t, n)
}

func TestAdminActionsOnMissingRow(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()

	assert.True(t, errorx.IsNotFound(f.svc.Approve(ctx, admin, 99)))
	assert.True(t, errorx.IsNotFound(f.svc.Decline(ctx, admin, 99)))
	assert.True(t, errorx.IsNotFound(f.svc.Remove(ctx, admin, 99)))
	assert.Empty(t, f.publisher.types())
}

func TestAdminActionsFailWhenStoreDown(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()
	_, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	id, _ := f.gw.rowFor("G1", "UA")

	f.gw.setUnavailable(true)
	err = f.svc.Approve(ctx, admin, id)
	require.Error(t, err)
	assert.Equal(t, errorx.CodeCollectionUnavailable, errorx.GetCode(err))

	f.gw.setUnavailable(false)
	row, err := f.gw.FindByID(id)
	require.NoError(t, err)
	assert.Equal(t, model.MembershipPending, row.Status)
}

func TestAdminActionsRequireAdmin(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()
	_, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	id, _ := f.gw.rowFor("G1", "UA")

	assert.ErrorIs(t, f.svc.Approve(ctx, userB, id), errorx.ErrForbidden)
	assert.ErrorIs(t, f.svc.Decline(ctx, userA, id), errorx.ErrForbidden)
	assert.ErrorIs(t, f.svc.Remove(ctx, session.Guest(), id), errorx.ErrForbidden)
	_, err = f.svc.ListRequests(ctx, userA, repository.MembershipFilter{})
	assert.ErrorIs(t, err, errorx.ErrForbidden)
}

func TestEnterGroupRequiresApproved(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()

	// None
	_, err := f.svc.EnterGroup(ctx, userA, "G1")
	assert.ErrorIs(t, err, errorx.ErrPendingApproval)

	// Pending
	_, err = f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	_, err = f.svc.EnterGroup(ctx, userA, "G1")
	assert.ErrorIs(t, err, errorx.ErrPendingApproval)
	assert.Equal(t, "加入申请正在等待管理员审核", err.Error())

	// Guest
	_, err = f.svc.EnterGroup(ctx, session.Guest(), "G1")
	assert.Equal(t, errorx.KindUnauthorized, errorx.KindOf(err))
}

func TestEnterGroupReturnsPosts(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()
	f.gw.posts = []repository.PostWithAuthor{{ID: 1, GroupId: "G1", UserId: "UA", Content: "hello"}}

	_, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	id, _ := f.gw.rowFor("G1", "UA")
	require.NoError(t, f.svc.Approve(ctx, admin, id))

	rsp, err := f.svc.EnterGroup(ctx, userA, "G1")
	require.NoError(t, err)
	assert.Equal(t, "Youth", rsp.Name)
	require.Len(t, rsp.Posts, 1)
	assert.Equal(t, "hello", rsp.Posts[0].Content)
}

// 远端可用：申请 -> 通过 -> 重新打开 -> 移除
func TestScenarioRemoteLifecycle(t *testing.T) {
	f := newFixture(t, g1)
	ctx := context.Background()
	base := viewOf(t, f.svc.ListGroups(ctx, userA), "G1").MembersCount

	views, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	v := viewOf(t, views, "G1")
	assert.Equal(t, model.MembershipPending, v.Status)
	assert.Equal(t, base, v.MembersCount)

	id, _ := f.gw.rowFor("G1", "UA")
	require.NoError(t, f.svc.Approve(ctx, admin, id))
	v = viewOf(t, f.svc.ListGroups(ctx, userA), "G1")
	assert.Equal(t, model.MembershipApproved, v.Status)
	assert.Equal(t, base+1, v.MembersCount)

	v = viewOf(t, f.reload().ListGroups(ctx, userA), "G1")
	assert.Equal(t, model.MembershipApproved, v.Status)

	_, err = f.svc.EnterGroup(ctx, userA, "G1")
	require.NoError(t, err)

	require.NoError(t, f.svc.Remove(ctx, admin, id))
	v = viewOf(t, f.svc.ListGroups(ctx, userA), "G1")
	assert.Equal(t, model.MembershipNone, v.Status)
	assert.Equal(t, base, v.MembersCount)

	_, err = f.svc.EnterGroup(ctx, userA, "G1")
	assert.ErrorIs(t, err, errorx.ErrPendingApproval)

	assert.Equal(t, []string{
		mq.EventMembershipRequested,
		mq.EventMembershipApproved,
		mq.EventMembershipRemoved,
	}, f.publisher.types())
}

// 远端入群表不存在：申请写入备用存储
func TestScenarioCollectionAbsent(t *testing.T) {
	f := newFixture(t, g2)
	f.gw.setUnavailable(true)
	ctx := context.Background()

	views, err := f.svc.RequestJoin(ctx, userB, "G2")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipPending, viewOf(t, views, "G2").Status)

	_, err = f.svc.RequestJoin(ctx, userB, "G2")
	require.NoError(t, err)

	entries, err := f.store.Load(ctx, "UB")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "G2", entries[0].GroupId)
	assert.Equal(t, model.MembershipPending, entries[0].Status)

	// 重新打开后仍然是 Pending
	v := viewOf(t, f.reload().ListGroups(ctx, userB), "G2")
	assert.Equal(t, model.MembershipPending, v.Status)
	assert.False(t, v.IsMember)

	// 其他用户看不到
	assert.Equal(t, model.MembershipNone, viewOf(t, f.svc.ListGroups(ctx, userA), "G2").Status)

	// 备用存储中的 Pending 也不能进入
	_, err = f.svc.EnterGroup(ctx, userB, "G2")
	assert.ErrorIs(t, err, errorx.ErrPendingApproval)

	// 只有第一次写入发布事件
	require.Len(t, f.publisher.events, 1)
	assert.True(t, f.publisher.events[0].Fallback)
}

func TestGenericUpsertFailureFallsBack(t *testing.T) {
	f := newFixture(t, g1)
	f.gw.upsertErr = errorx.New(errorx.CodeDBError, "permission denied")
	ctx := context.Background()

	views, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	// 写回仍然失败，备用记录保留并按 Pending 展示
	assert.Equal(t, model.MembershipPending, viewOf(t, views, "G1").Status)

	entries, err := f.store.Load(ctx, "UA")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFallbackReconciledWhenRemoteReturns(t *testing.T) {
	f := newFixture(t, g2)
	ctx := context.Background()

	f.gw.setUnavailable(true)
	_, err := f.svc.RequestJoin(ctx, userB, "G2")
	require.NoError(t, err)

	f.gw.setUnavailable(false)
	v := viewOf(t, f.svc.ListGroups(ctx, userB), "G2")
	assert.Equal(t, model.MembershipPending, v.Status)

	_, n := f.gw.rowFor("G2", "UB")
	assert.Equal(t, 1, n)
	entries, err := f.store.Load(ctx, "UB")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// 写回后管理员可以正常审核
	id, _ := f.gw.rowFor("G2", "UB")
	require.NoError(t, f.svc.Approve(ctx, admin, id))
	assert.True(t, viewOf(t, f.svc.ListGroups(ctx, userB), "G2").IsMember)
}

// 写回 G1 的同时另一个请求把 G2 追加进备用存储，G2 不能丢
func TestReconcileKeepsEntryAppendedDuringSync(t *testing.T) {
	f := newFixture(t, g1, g2)
	ctx := context.Background()

	f.gw.setUnavailable(true)
	_, err := f.svc.RequestJoin(ctx, userB, "G1")
	require.NoError(t, err)
	f.gw.setUnavailable(false)

	gw := &appendingGateway{
		fakeGateway: f.gw,
		store:       f.store,
		onGroup:     "G1",
		entry:       myredis.FallbackEntry{GroupId: "G2", UserId: "UB", Status: model.MembershipPending},
	}
	svc := NewMembershipService(gw, f.store, f.publisher, f.kicker)
	svc.ListGroups(ctx, userB)

	entries, err := f.store.Load(ctx, "UB")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "G2", entries[0].GroupId)

	status, err := svc.StatusOf(ctx, "UB", "G2")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipPending, status)

	// 下一次列表读取把 G2 也写回远端
	assert.Equal(t, model.MembershipPending, viewOf(t, svc.ListGroups(ctx, userB), "G2").Status)
	_, n := f.gw.rowFor("G2", "UB")
	assert.Equal(t, 1, n)
	entries, err = f.store.Load(ctx, "UB")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

// 部分写回失败时只保留失败的记录
func TestReconcileRemovesOnlySyncedGroups(t *testing.T) {
	f := newFixture(t, g1, g2)
	ctx := context.Background()

	f.gw.setUnavailable(true)
	_, err := f.svc.RequestJoin(ctx, userB, "G1")
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(ctx, userB, "G2")
	require.NoError(t, err)
	f.gw.setUnavailable(false)

	svc := NewMembershipService(&failingGroupGateway{fakeGateway: f.gw, group: "G2"}, f.store, f.publisher, f.kicker)
	views := svc.ListGroups(ctx, userB)
	assert.Equal(t, model.MembershipPending, viewOf(t, views, "G1").Status)
	assert.Equal(t, model.MembershipPending, viewOf(t, views, "G2").Status)

	entries, err := f.store.Load(ctx, "UB")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "G2", entries[0].GroupId)
}

type failingGroupGateway struct {
	*fakeGateway
	group string
}

func (g *failingGroupGateway) UpsertPending(groupId, userId string) error {
	if groupId == g.group {
		return errorx.New(errorx.CodeDBError, "lock wait timeout")
	}
	return g.fakeGateway.UpsertPending(groupId, userId)
}

func TestRemoveAndDeclineKickFeed(t *testing.T) {
	f := newFixture(t, g1, g2)
	ctx := context.Background()
	_, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(ctx, userB, "G2")
	require.NoError(t, err)
	approved, _ := f.gw.rowFor("G1", "UA")
	pending, _ := f.gw.rowFor("G2", "UB")
	require.NoError(t, f.svc.Approve(ctx, admin, approved))
	assert.Empty(t, f.kicker.list())

	require.NoError(t, f.svc.Remove(ctx, admin, approved))
	require.NoError(t, f.svc.Decline(ctx, admin, pending))
	assert.Equal(t, []string{"UA:G1", "UB:G2"}, f.kicker.list())

	// 失败的操作不断开
	assert.Error(t, f.svc.Remove(ctx, admin, approved))
	assert.Len(t, f.kicker.list(), 2)
}

func TestListRequests(t *testing.T) {
	f := newFixture(t, g1, g2)
	ctx := context.Background()
	_, err := f.svc.RequestJoin(ctx, userA, "G1")
	require.NoError(t, err)
	_, err = f.svc.RequestJoin(ctx, userB, "G2")
	require.NoError(t, err)

	all, err := f.svc.ListRequests(ctx, admin, repository.MembershipFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onlyG1, err := f.svc.ListRequests(ctx, admin, repository.MembershipFilter{GroupId: "G1", Status: model.MembershipPending})
	require.NoError(t, err)
	require.Len(t, onlyG1, 1)
	assert.Equal(t, "UA", onlyG1[0].UserId)

	f.gw.setUnavailable(true)
	_, err = f.svc.ListRequests(ctx, admin, repository.MembershipFilter{})
	assert.True(t, errorx.IsCollectionUnavailable(err))
}
