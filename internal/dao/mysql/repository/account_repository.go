package repository

import (
	"church_app_server/internal/model"

	"gorm.io/gorm"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账号 Repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

// FindByEmail 按邮箱查找账号
func (r *accountRepository) FindByEmail(email string) (*model.Account, error) {
	var account model.Account
	if err := r.db.First(&account, "email = ?", email).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询账号 email=%s", email)
	}
	return &account, nil
}

// FindByUuid 按 UUID 查找账号
func (r *accountRepository) FindByUuid(uuid string) (*model.Account, error) {
	var account model.Account
	if err := r.db.First(&account, "uuid = ?", uuid).Error; err != nil {
		return nil, wrapDBErrorf(err, "查询账号 uuid=%s", uuid)
	}
	return &account, nil
}

// Create 创建账号，邮箱重复时返回 CodeConflict
func (r *accountRepository) Create(account *model.Account) error {
	if err := r.db.Create(account).Error; err != nil {
		return wrapDBError(err, "创建账号")
	}
	return nil
}
