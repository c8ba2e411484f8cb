package repository

import (
	"time"

	"church_app_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type eventRepository struct {
	idRepository[model.Event]
}

// NewEventRepository 创建活动 Repository
func NewEventRepository(db *gorm.DB) EventRepository {
	return &eventRepository{idRepository[model.Event]{db: db, name: "活动"}}
}

// List 分页查询活动
func (r *eventRepository) List(upcomingOnly bool, now time.Time, page, pageSize int) ([]model.Event, int64, error) {
	var events []model.Event
	var total int64

	query := r.db.Model(&model.Event{})
	if upcomingOnly {
		query = query.Where("ends_at >= ?", now)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, wrapDBError(err, "查询活动总数")
	}
	if err := query.Order("starts_at ASC").Offset(pageOffset(page, pageSize)).Limit(pageSize).Find(&events).Error; err != nil {
		return nil, 0, wrapDBError(err, "分页查询活动")
	}
	return events, total, nil
}

// FindByIDForUpdate SELECT ... FOR UPDATE，须在事务内调用
func (r *eventRepository) FindByIDForUpdate(id uint) (*model.Event, error) {
	var event model.Event
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&event, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "锁定活动 id=%d", id)
	}
	return &event, nil
}

type eventRsvpRepository struct {
	db *gorm.DB
}

// NewEventRsvpRepository 创建活动报名 Repository
func NewEventRsvpRepository(db *gorm.DB) EventRsvpRepository {
	return &eventRsvpRepository{db: db}
}

// Exists 是否已报名
func (r *eventRsvpRepository) Exists(eventId uint, userId string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.EventRsvp{}).
		Where("event_id = ? AND user_id = ?", eventId, userId).
		Count(&count).Error; err != nil {
		return false, wrapDBErrorf(err, "查询报名 event_id=%d", eventId)
	}
	return count > 0, nil
}

// Create 报名，重复报名返回 CodeConflict
func (r *eventRsvpRepository) Create(rsvp *model.EventRsvp) error {
	if err := r.db.Create(rsvp).Error; err != nil {
		return wrapDBErrorf(err, "报名活动 event_id=%d", rsvp.EventId)
	}
	return nil
}

// Delete 取消报名
func (r *eventRsvpRepository) Delete(eventId uint, userId string) (bool, error) {
	tx := r.db.Where("event_id = ? AND user_id = ?", eventId, userId).Delete(&model.EventRsvp{})
	if tx.Error != nil {
		return false, wrapDBErrorf(tx.Error, "取消报名 event_id=%d", eventId)
	}
	return tx.RowsAffected > 0, nil
}

// CountByEvent 单个活动报名人数
func (r *eventRsvpRepository) CountByEvent(eventId uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.EventRsvp{}).Where("event_id = ?", eventId).Count(&count).Error; err != nil {
		return 0, wrapDBErrorf(err, "统计报名 event_id=%d", eventId)
	}
	return count, nil
}

// CountByEvents GROUP BY 批量统计
func (r *eventRsvpRepository) CountByEvents(eventIds []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(eventIds))
	if len(eventIds) == 0 {
		return counts, nil
	}
	var rows []struct {
		EventId uint
		Total   int64
	}
	if err := r.db.Model(&model.EventRsvp{}).
		Select("event_id, COUNT(*) AS total").
		Where("event_id IN ?", eventIds).
		Group("event_id").
		Scan(&rows).Error; err != nil {
		return nil, wrapDBError(err, "批量统计报名")
	}
	for _, row := range rows {
		counts[row.EventId] = row.Total
	}
	return counts, nil
}

// FindEventIdsByUser 用户在给定活动中的报名情况
func (r *eventRsvpRepository) FindEventIdsByUser(userId string, eventIds []uint) (map[uint]bool, error) {
	mine := make(map[uint]bool)
	if userId == "" || len(eventIds) == 0 {
		return mine, nil
	}
	var ids []uint
	if err := r.db.Model(&model.EventRsvp{}).
		Where("user_id = ? AND event_id IN ?", userId, eventIds).
		Pluck("event_id", &ids).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询用户报名 user_id=%s", userId)
	}
	for _, id := range ids {
		mine[id] = true
	}
	return mine, nil
}

// DeleteByEvent 删除活动的全部报名
func (r *eventRsvpRepository) DeleteByEvent(eventId uint) error {
	if err := r.db.Where("event_id = ?", eventId).Delete(&model.EventRsvp{}).Error; err != nil {
		return wrapDBErrorf(err, "删除活动报名 event_id=%d", eventId)
	}
	return nil
}
