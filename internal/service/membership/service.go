// Package membership 实现社区小组的入群流程
// 状态机（每个 用户-小组 对）：
//
//	None -> Pending   用户申请（幂等）
//	Pending -> Approved 管理员通过
//	Pending -> None   管理员拒绝（删除记录）
//	Approved -> None  管理员移除（删除记录）
//
// 远端入群表不可用时，申请写入按用户保存的备用存储；远端恢复后在下一次列表读取时同步回去。
package membership

import (
	"context"
	"time"

	"church_app_server/internal/dao/mysql/repository"
	myredis "church_app_server/internal/dao/redis"
	"church_app_server/internal/dto/respond"
	"church_app_server/internal/infrastructure/mq"
	"church_app_server/internal/model"
	"church_app_server/internal/session"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/errorx"

	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// 面向用户的提示
const (
	msgLoginToJoin      = "请先登录后再申请加入"
	msgRequestNotFound  = "入群申请不存在"
	msgGroupNotFound    = "小组不存在"
	msgMembershipFailed = "入群记录操作失败，请稍后重试"
)

// membershipService 入群流程业务实现
type membershipService struct {
	gateway   Gateway
	fallback  FallbackStore
	publisher mq.EventPublisher
	kicker    Kicker
	joins     singleflight.Group // 合并同一用户对同一小组的并发申请
}

// NewMembershipService 构造函数，注入远端存储、备用存储、事件发布者与推送连接管理
func NewMembershipService(gateway Gateway, fallback FallbackStore, publisher mq.EventPublisher, kicker Kicker) *membershipService {
	if publisher == nil {
		publisher = mq.LogEventPublisher{}
	}
	if kicker == nil {
		kicker = noopKicker{}
	}
	return &membershipService{
		gateway:   gateway,
		fallback:  fallback,
		publisher: publisher,
		kicker:    kicker,
	}
}

// ListGroups 列出全部小组及当前用户的入群状态
// 不返回错误：小组读取失败时返回空列表，入群记录读取失败时按无记录处理
func (s *membershipService) ListGroups(ctx context.Context, sess session.Session) []respond.GroupView {
	var (
		groups      []model.CommunityGroup
		mine        []model.GroupMembership
		approved    []model.GroupMembership
		groupsErr   error
		mineErr     error
		approvedErr error
	)

	p := pool.New().WithMaxGoroutines(3)
	p.Go(func() { groups, groupsErr = s.gateway.ListGroups() })
	p.Go(func() { approved, approvedErr = s.gateway.FindApproved() })
	if !sess.IsGuest() {
		p.Go(func() { mine, mineErr = s.gateway.FindByUser(sess.UserID) })
	}
	p.Wait()

	if groupsErr != nil {
		zap.L().Error("list groups", zap.Error(groupsErr))
		return []respond.GroupView{}
	}

	unavailable := errorx.IsCollectionUnavailable(mineErr) || errorx.IsCollectionUnavailable(approvedErr)
	switch {
	case unavailable && sess.IsGuest():
		approved = nil
	case unavailable:
		zap.L().Warn("membership collection unavailable, reading fallback store", zap.String("user_id", sess.UserID))
		mine, approved = s.fallbackRows(ctx, sess.UserID)
	default:
		if mineErr != nil {
			zap.L().Error("list my memberships", zap.String("user_id", sess.UserID), zap.Error(mineErr))
			mine = nil
		}
		if approvedErr != nil {
			zap.L().Error("list approved memberships", zap.Error(approvedErr))
			approved = nil
		}
		if !sess.IsGuest() && mineErr == nil {
			mine = s.reconcile(ctx, sess.UserID, mine)
		}
	}

	return buildViews(groups, mine, approved)
}

// fallbackRows 用备用存储同时代替"我的记录"与"已通过记录"
func (s *membershipService) fallbackRows(ctx context.Context, userId string) (mine, approved []model.GroupMembership) {
	entries, err := s.fallback.Load(ctx, userId)
	if err != nil {
		zap.L().Error("load fallback memberships", zap.String("user_id", userId), zap.Error(err))
		return nil, nil
	}
	for _, e := range entries {
		row := model.GroupMembership{GroupId: e.GroupId, UserId: e.UserId, Status: e.Status}
		mine = append(mine, row)
		if e.Status == model.MembershipApproved {
			approved = append(approved, row)
		}
	}
	return mine, approved
}

// reconcile 远端可用时把备用记录写回远端，并从备用存储中删掉写回成功的小组
// 写回失败的记录保留在备用存储中，本次仍按 Pending 展示；期间新追加的记录留到下次同步
func (s *membershipService) reconcile(ctx context.Context, userId string, mine []model.GroupMembership) []model.GroupMembership {
	entries, err := s.fallback.Load(ctx, userId)
	if err != nil {
		zap.L().Warn("reconcile: load fallback", zap.String("user_id", userId), zap.Error(err))
		return mine
	}
	if len(entries) == 0 {
		return mine
	}

	have := make(map[string]bool, len(mine))
	for _, m := range mine {
		have[m.GroupId] = true
	}
	synced := make([]string, 0, len(entries))
	for _, e := range entries {
		if err := s.gateway.UpsertPending(e.GroupId, userId); err != nil {
			zap.L().Warn("reconcile: upsert", zap.String("user_id", userId), zap.String("group_id", e.GroupId), zap.Error(err))
		} else {
			synced = append(synced, e.GroupId)
		}
		// 冲突时远端原有记录不变，只补上原本没有的
		if !have[e.GroupId] {
			mine = append(mine, model.GroupMembership{GroupId: e.GroupId, UserId: userId, Status: model.MembershipPending})
			have[e.GroupId] = true
		}
	}
	if len(synced) == 0 {
		return mine
	}
	if err := s.fallback.RemoveGroups(ctx, userId, synced); err != nil {
		zap.L().Warn("reconcile: remove fallback", zap.String("user_id", userId), zap.Error(err))
		return mine
	}
	zap.L().Info("fallback memberships reconciled", zap.String("user_id", userId),
		zap.Int("synced", len(synced)), zap.Int("entries", len(entries)))
	return mine
}

// buildViews 合并小组、个人状态与人数
func buildViews(groups []model.CommunityGroup, mine, approved []model.GroupMembership) []respond.GroupView {
	status := make(map[string]model.MembershipStatus, len(mine))
	for _, m := range mine {
		status[m.GroupId] = m.Status
	}
	counts := make(map[string]int)
	for _, a := range approved {
		if a.Status == model.MembershipApproved {
			counts[a.GroupId]++
		}
	}

	views := make([]respond.GroupView, 0, len(groups))
	for _, g := range groups {
		st, ok := status[g.Uuid]
		if !ok {
			st = model.MembershipNone
		}
		views = append(views, respond.GroupView{
			GroupId:      g.Uuid,
			Name:         g.Name,
			Description:  g.Description,
			Avatar:       g.Avatar,
			MembersCount: g.MemberCount + counts[g.Uuid],
			Status:       st,
			IsMember:     st == model.MembershipApproved,
		})
	}
	return views
}

// RequestJoin 申请加入小组，返回重新计算后的小组列表
// 远端写入失败（不论原因）都尝试写入备用存储，不向调用方返回失败
func (s *membershipService) RequestJoin(ctx context.Context, sess session.Session, groupId string) ([]respond.GroupView, error) {
	if sess.IsGuest() {
		return nil, errorx.New(errorx.CodeUnauthorized, msgLoginToJoin)
	}
	if _, err := s.gateway.FindGroup(groupId); err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, msgGroupNotFound)
		}
		// 小组读取失败不阻塞申请
		zap.L().Warn("request join: find group", zap.String("group_id", groupId), zap.Error(err))
	}

	key := sess.UserID + ":" + groupId
	_, _, _ = s.joins.Do(key, func() (any, error) {
		s.join(ctx, sess.UserID, groupId)
		return nil, nil
	})

	return s.ListGroups(ctx, sess), nil
}

// join 写远端，失败时降级到备用存储
func (s *membershipService) join(ctx context.Context, userId, groupId string) {
	event := mq.MembershipEvent{
		Type:    mq.EventMembershipRequested,
		GroupId: groupId,
		UserId:  userId,
		ActorId: userId,
		At:      time.Now(),
	}

	err := s.gateway.UpsertPending(groupId, userId)
	if err != nil {
		if errorx.IsCollectionUnavailable(err) {
			zap.L().Warn("membership collection unavailable, writing fallback", zap.String("user_id", userId), zap.String("group_id", groupId))
		} else {
			zap.L().Error("upsert membership, writing fallback", zap.String("user_id", userId), zap.String("group_id", groupId), zap.Error(err))
		}
		appended, ferr := s.fallback.AppendIfAbsent(ctx, myredis.FallbackEntry{
			GroupId: groupId,
			UserId:  userId,
			Status:  model.MembershipPending,
		})
		if ferr != nil {
			zap.L().Error("append fallback membership", zap.String("user_id", userId), zap.String("group_id", groupId), zap.Error(ferr))
			return
		}
		if !appended {
			return
		}
		event.Fallback = true
	}

	s.publisher.Publish(ctx, event)
}

// Approve 管理员通过申请
func (s *membershipService) Approve(ctx context.Context, actor session.Session, id uint) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	row, err := s.gateway.FindByID(id)
	if err != nil {
		return adminError(err, "approve", id)
	}
	if row.Status == model.MembershipApproved {
		return nil
	}
	if err := s.gateway.UpdateStatus(id, model.MembershipApproved); err != nil {
		return adminError(err, "approve", id)
	}

	s.publisher.Publish(ctx, mq.MembershipEvent{
		Type:         mq.EventMembershipApproved,
		MembershipID: id,
		GroupId:      row.GroupId,
		UserId:       row.UserId,
		ActorId:      actor.UserID,
		At:           time.Now(),
	})
	return nil
}

// Decline 管理员拒绝申请（删除记录）
func (s *membershipService) Decline(ctx context.Context, actor session.Session, id uint) error {
	return s.deleteRow(ctx, actor, id, mq.EventMembershipDeclined)
}

// Remove 管理员移除成员（删除记录）
func (s *membershipService) Remove(ctx context.Context, actor session.Session, id uint) error {
	return s.deleteRow(ctx, actor, id, mq.EventMembershipRemoved)
}

func (s *membershipService) deleteRow(ctx context.Context, actor session.Session, id uint, eventType string) error {
	if !actor.IsAdmin() {
		return errorx.ErrForbidden
	}
	row, err := s.gateway.FindByID(id)
	if err != nil {
		return adminError(err, eventType, id)
	}
	if err := s.gateway.DeleteByID(id); err != nil {
		return adminError(err, eventType, id)
	}
	// 记录已删除，不再是成员的连接立即断开
	s.kicker.Kick(row.UserId, row.GroupId)

	s.publisher.Publish(ctx, mq.MembershipEvent{
		Type:         eventType,
		MembershipID: id,
		GroupId:      row.GroupId,
		UserId:       row.UserId,
		ActorId:      actor.UserID,
		At:           time.Now(),
	})
	return nil
}

// adminError 管理员操作失败：记录原因，返回可展示的错误，状态保持不变
func adminError(err error, op string, id uint) error {
	if errorx.IsNotFound(err) {
		return errorx.Wrap(err, errorx.CodeNotFound, msgRequestNotFound)
	}
	zap.L().Error("membership admin action", zap.String("op", op), zap.Uint("id", id), zap.Error(err))
	if errorx.IsCollectionUnavailable(err) {
		return errorx.Wrap(err, errorx.CodeCollectionUnavailable, msgMembershipFailed)
	}
	return errorx.Wrap(err, errorx.CodeDBError, msgMembershipFailed)
}

// StatusOf 查询用户在小组的状态
// 远端没有记录时再看备用存储中尚未写回的申请；远端表不可用时只读备用存储
func (s *membershipService) StatusOf(ctx context.Context, userId, groupId string) (model.MembershipStatus, error) {
	row, err := s.gateway.FindByGroupAndUser(groupId, userId)
	if err == nil {
		return row.Status, nil
	}
	if errorx.IsNotFound(err) {
		status, ferr := s.fallbackStatus(ctx, userId, groupId)
		if ferr != nil {
			zap.L().Warn("status: load fallback", zap.String("user_id", userId), zap.Error(ferr))
			return model.MembershipNone, nil
		}
		return status, nil
	}
	if errorx.IsCollectionUnavailable(err) {
		return s.fallbackStatus(ctx, userId, groupId)
	}
	return model.MembershipNone, err
}

func (s *membershipService) fallbackStatus(ctx context.Context, userId, groupId string) (model.MembershipStatus, error) {
	entries, err := s.fallback.Load(ctx, userId)
	if err != nil {
		return model.MembershipNone, err
	}
	for _, e := range entries {
		if e.GroupId == groupId {
			return e.Status, nil
		}
	}
	return model.MembershipNone, nil
}

// CheckApproved 只有状态恰好为 Approved 才放行
func (s *membershipService) CheckApproved(ctx context.Context, sess session.Session, groupId string) error {
	if sess.IsGuest() {
		return errorx.ErrUnauthorized
	}
	status, err := s.StatusOf(ctx, sess.UserID, groupId)
	if err != nil {
		zap.L().Error("check membership status", zap.String("user_id", sess.UserID), zap.String("group_id", groupId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	if status != model.MembershipApproved {
		return errorx.ErrPendingApproval
	}
	return nil
}

// EnterGroup 进入小组，返回小组信息与最近帖子
func (s *membershipService) EnterGroup(ctx context.Context, sess session.Session, groupId string) (*respond.EnterGroupRespond, error) {
	if err := s.CheckApproved(ctx, sess, groupId); err != nil {
		return nil, err
	}

	group, err := s.gateway.FindGroup(groupId)
	if err != nil {
		if errorx.IsNotFound(err) {
			return nil, errorx.New(errorx.CodeNotFound, msgGroupNotFound)
		}
		zap.L().Error("enter group: find group", zap.String("group_id", groupId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	rsp := &respond.EnterGroupRespond{
		GroupId:     group.Uuid,
		Name:        group.Name,
		Description: group.Description,
		Avatar:      group.Avatar,
		Posts:       []respond.GroupPostView{},
	}
	posts, err := s.gateway.RecentPosts(groupId, constants.RECENT_POST_LIMIT)
	if err != nil {
		// 帖子读取失败不影响进入
		zap.L().Error("enter group: recent posts", zap.String("group_id", groupId), zap.Error(err))
		return rsp, nil
	}
	for _, p := range posts {
		rsp.Posts = append(rsp.Posts, PostView(p))
	}
	return rsp, nil
}

// PostView 帖子转为响应结构
func PostView(p repository.PostWithAuthor) respond.GroupPostView {
	return respond.GroupPostView{
		Id:          p.ID,
		GroupId:     p.GroupId,
		UserId:      p.UserId,
		DisplayName: p.DisplayName,
		Avatar:      p.Avatar,
		Content:     p.Content,
		CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ListRequests 管理员查看入群记录
func (s *membershipService) ListRequests(ctx context.Context, actor session.Session, filter repository.MembershipFilter) ([]respond.MembershipRequestView, error) {
	if !actor.IsAdmin() {
		return nil, errorx.ErrForbidden
	}
	rows, err := s.gateway.ListWithApplicant(filter)
	if err != nil {
		zap.L().Error("list membership requests", zap.Error(err))
		if errorx.IsCollectionUnavailable(err) {
			return nil, errorx.Wrap(err, errorx.CodeCollectionUnavailable, "入群记录表尚未创建")
		}
		return nil, errorx.ErrServerBusy
	}
	views := make([]respond.MembershipRequestView, 0, len(rows))
	for _, r := range rows {
		views = append(views, respond.MembershipRequestView{
			Id:          r.ID,
			GroupId:     r.GroupId,
			GroupName:   r.GroupName,
			UserId:      r.UserId,
			DisplayName: r.DisplayName,
			Avatar:      r.Avatar,
			Status:      r.Status,
			CreatedAt:   r.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return views, nil
}
