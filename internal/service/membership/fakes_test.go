package membership

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"church_app_server/internal/dao/mysql/repository"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/infrastructure/mq"
	"church_app_server/internal/model"
	"church_app_server/pkg/errorx"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

var errTableMissing = errorx.Wrap(errors.New("Error 1146: Table 'church.group_memberships' doesn't exist"),
	errorx.CodeCollectionUnavailable, "group_memberships")

// fakeGateway 内存版远端存储
type fakeGateway struct {
	mu          sync.Mutex
	groups      []model.CommunityGroup
	rows        map[uint]*model.GroupMembership
	posts       []repository.PostWithAuthor
	nextID      uint
	unavailable bool  // 模拟入群表未创建
	upsertErr   error // 模拟其他写入失败
	groupsErr   error
	upserts     int
}

func newFakeGateway(groups ...model.CommunityGroup) *fakeGateway {
	return &fakeGateway{groups: groups, rows: map[uint]*model.GroupMembership{}}
}

func (g *fakeGateway) setUnavailable(v bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.unavailable = v
}

func (g *fakeGateway) ListGroups() ([]model.CommunityGroup, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.groupsErr != nil {
		return nil, g.groupsErr
	}
	return append([]model.CommunityGroup(nil), g.groups...), nil
}

func (g *fakeGateway) FindGroup(groupId string) (*model.CommunityGroup, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.groups {
		if g.groups[i].Uuid == groupId {
			grp := g.groups[i]
			return &grp, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "group not found")
}

func (g *fakeGateway) UpsertPending(groupId, userId string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.upserts++
	if g.unavailable {
		return errTableMissing
	}
	if g.upsertErr != nil {
		return g.upsertErr
	}
	for _, r := range g.rows {
		if r.GroupId == groupId && r.UserId == userId {
			return nil
		}
	}
	g.nextID++
	g.rows[g.nextID] = &model.GroupMembership{ID: g.nextID, GroupId: groupId, UserId: userId, Status: model.MembershipPending}
	return nil
}

func (g *fakeGateway) FindByUser(userId string) ([]model.GroupMembership, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable {
		return nil, errTableMissing
	}
	var out []model.GroupMembership
	for _, r := range g.rows {
		if r.UserId == userId {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (g *fakeGateway) FindApproved() ([]model.GroupMembership, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable {
		return nil, errTableMissing
	}
	var out []model.GroupMembership
	for _, r := range g.rows {
		if r.Status == model.MembershipApproved {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (g *fakeGateway) FindByID(id uint) (*model.GroupMembership, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable {
		return nil, errTableMissing
	}
	r, ok := g.rows[id]
	if !ok {
		return nil, errorx.New(errorx.CodeNotFound, "membership not found")
	}
	cp := *r
	return &cp, nil
}

func (g *fakeGateway) FindByGroupAndUser(groupId, userId string) (*model.GroupMembership, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable {
		return nil, errTableMissing
	}
	for _, r := range g.rows {
		if r.GroupId == groupId && r.UserId == userId {
			cp := *r
			return &cp, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "membership not found")
}

func (g *fakeGateway) UpdateStatus(id uint, status model.MembershipStatus) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable {
		return errTableMissing
	}
	r, ok := g.rows[id]
	if !ok {
		return errorx.New(errorx.CodeNotFound, "membership not found")
	}
	r.Status = status
	return nil
}

func (g *fakeGateway) DeleteByID(id uint) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable {
		return errTableMissing
	}
	if _, ok := g.rows[id]; !ok {
		return errorx.New(errorx.CodeNotFound, "membership not found")
	}
	delete(g.rows, id)
	return nil
}

func (g *fakeGateway) ListWithApplicant(filter repository.MembershipFilter) ([]repository.MembershipWithApplicant, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unavailable {
		return nil, errTableMissing
	}
	var out []repository.MembershipWithApplicant
	for _, r := range g.rows {
		if filter.GroupId != "" && r.GroupId != filter.GroupId {
			continue
		}
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, repository.MembershipWithApplicant{ID: r.ID, GroupId: r.GroupId, UserId: r.UserId, Status: r.Status})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (g *fakeGateway) RecentPosts(groupId string, limit int) ([]repository.PostWithAuthor, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []repository.PostWithAuthor
	for _, p := range g.posts {
		if p.GroupId == groupId && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

// rowFor 找到 (group,user) 对应的记录 id
func (g *fakeGateway) rowFor(groupId, userId string) (uint, int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	var id uint
	n := 0
	for _, r := range g.rows {
		if r.GroupId == groupId && r.UserId == userId {
			id = r.ID
			n++
		}
	}
	return id, n
}

// recordingPublisher 记录发布的事件
type recordingPublisher struct {
	mu     sync.Mutex
	events []mq.MembershipEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e mq.MembershipEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// recordingKicker 记录被断开推送连接的 用户:小组
type recordingKicker struct {
	mu     sync.Mutex
	kicked []string
}

func (k *recordingKicker) Kick(userId, groupId string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.kicked = append(k.kicked, userId+":"+groupId)
}

func (k *recordingKicker) list() []string {
	k.mu.Lock()
	defer k.mu.Unlock()
	return append([]string(nil), k.kicked...)
}

// appendingGateway 写回某个小组时，模拟同一用户的另一个请求往备用存储追加记录
type appendingGateway struct {
	*fakeGateway
	store   FallbackStore
	onGroup string
	entry   myredis.FallbackEntry
	once    sync.Once
}

func (g *appendingGateway) UpsertPending(groupId, userId string) error {
	if groupId == g.onGroup {
		g.once.Do(func() {
			_, _ = g.store.AppendIfAbsent(context.Background(), g.entry)
		})
	}
	return g.fakeGateway.UpsertPending(groupId, userId)
}

type fixture struct {
	gw        *fakeGateway
	store     *myredis.MembershipFallbackStore
	publisher *recordingPublisher
	kicker    *recordingKicker
	svc       *membershipService
	client    *redis.Client
}

func newFixture(t *testing.T, groups ...model.CommunityGroup) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &fixture{
		gw:        newFakeGateway(groups...),
		store:     myredis.NewMembershipFallbackStore(client),
		publisher: &recordingPublisher{},
		kicker:    &recordingKicker{},
		client:    client,
	}
	f.svc = NewMembershipService(f.gw, f.store, f.publisher, f.kicker)
	return f
}

// reload 模拟重新打开应用：新的服务实例，同一份远端与备用存储
func (f *fixture) reload() *membershipService {
	return NewMembershipService(f.gw, myredis.NewMembershipFallbackStore(f.client), f.publisher, f.kicker)
}
