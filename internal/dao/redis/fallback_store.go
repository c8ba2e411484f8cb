package redis

import (
	"context"
	"encoding/json"
	"errors"

	"church_app_server/internal/model"
	"church_app_server/pkg/constants"
	"church_app_server/pkg/errorx"

	"github.com/go-redis/redis/v8"
)

// FallbackEntry 备用存储中的一条入群记录，结构与远端记录一致
type FallbackEntry struct {
	GroupId string                 `json:"group_id"`
	UserId  string                 `json:"user_id"`
	Status  model.MembershipStatus `json:"status"`
}

// 乐观锁冲突时的最大重试次数
const fallbackMaxRetries = 5

// MembershipFallbackStore 入群记录备用存储
// 每个用户一个 JSON 数组，键为 membership_fallback:<userId>，每次整体读写
type MembershipFallbackStore struct {
	client *redis.Client
}

// NewMembershipFallbackStore 创建备用存储
func NewMembershipFallbackStore(client *redis.Client) *MembershipFallbackStore {
	return &MembershipFallbackStore{client: client}
}

func fallbackKey(userId string) string {
	return constants.REDIS_MEMBERSHIP_FALLBACK_PREFIX + userId
}

// Load 读取用户的全部备用记录，不存在时返回空切片
func (s *MembershipFallbackStore) Load(ctx context.Context, userId string) ([]FallbackEntry, error) {
	return load(ctx, s.client, userId)
}

// load 同时用于普通读取与 WATCH 事务内读取
func load(ctx context.Context, c redis.Cmdable, userId string) ([]FallbackEntry, error) {
	raw, err := c.Get(ctx, fallbackKey(userId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []FallbackEntry{}, nil
		}
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "读取备用入群记录 user_id=%s", userId)
	}
	var entries []FallbackEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeCacheError, "解析备用入群记录 user_id=%s", userId)
	}
	return entries, nil
}

// AppendIfAbsent 同一小组没有记录时追加，返回是否写入
// 读改写放在 WATCH 事务中，并发追加不会互相覆盖
func (s *MembershipFallbackStore) AppendIfAbsent(ctx context.Context, entry FallbackEntry) (bool, error) {
	key := fallbackKey(entry.UserId)
	appended := false

	txf := func(tx *redis.Tx) error {
		entries, err := load(ctx, tx, entry.UserId)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.GroupId == entry.GroupId {
				appended = false
				return nil
			}
		}
		entries = append(entries, entry)
		raw, err := json.Marshal(entries)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, 0)
			return nil
		})
		if err == nil {
			appended = true
		}
		return err
	}

	for i := 0; i < fallbackMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return appended, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errorx.GetCode(err) == errorx.CodeCacheError {
			return false, err
		}
		return false, errorx.Wrapf(err, errorx.CodeCacheError, "追加备用入群记录 user_id=%s", entry.UserId)
	}
	return false, errorx.Newf(errorx.CodeCacheError, "追加备用入群记录冲突次数过多 user_id=%s", entry.UserId)
}

// RemoveGroups 只删除指定小组的记录，列表为空时删除整个键
// 与 AppendIfAbsent 共用 WATCH，期间新追加的记录不会被误删
func (s *MembershipFallbackStore) RemoveGroups(ctx context.Context, userId string, groupIds []string) error {
	if len(groupIds) == 0 {
		return nil
	}
	key := fallbackKey(userId)
	drop := make(map[string]bool, len(groupIds))
	for _, g := range groupIds {
		drop[g] = true
	}

	txf := func(tx *redis.Tx) error {
		entries, err := load(ctx, tx, userId)
		if err != nil {
			return err
		}
		kept := entries[:0]
		for _, e := range entries {
			if !drop[e.GroupId] {
				kept = append(kept, e)
			}
		}
		if len(kept) == len(entries) {
			return nil
		}
		var raw []byte
		if len(kept) > 0 {
			if raw, err = json.Marshal(kept); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(kept) == 0 {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, raw, 0)
			}
			return nil
		})
		return err
	}

	for i := 0; i < fallbackMaxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errorx.GetCode(err) == errorx.CodeCacheError {
			return err
		}
		return errorx.Wrapf(err, errorx.CodeCacheError, "删除备用入群记录 user_id=%s", userId)
	}
	return errorx.Newf(errorx.CodeCacheError, "删除备用入群记录冲突次数过多 user_id=%s", userId)
}
