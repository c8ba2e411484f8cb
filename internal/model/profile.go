// Package model 定义数据库实体模型
// 本文件定义账号与个人资料模型
package model

import (
	"golang.org/x/crypto/bcrypt" // 密码哈希库
	"gorm.io/gorm"
)

// 角色
const (
	RoleGuest  = "guest" // 未登录，仅存在于会话中，不落库
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// 资料状态
const (
	ProfileStatusNormal   int8 = 0
	ProfileStatusDisabled int8 = 1
)

// Account 登录账号
// 对应数据库 accounts 表，只保存身份凭证，展示信息放在 Profile
type Account struct {
	gorm.Model

	// Uuid 用户唯一标识，与 Profile.Uuid 相同
	// 格式：U + 6位日期 + 11位随机字符
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户唯一id"`

	Email string `gorm:"column:email;uniqueIndex;type:varchar(100);not null;comment:登录邮箱"`

	// Password bcrypt 哈希后的密码
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// RawPassword 明文密码（不存入数据库），在 BeforeSave 中加密
	RawPassword string `gorm:"-" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// BeforeSave 创建和更新前把 RawPassword 加密写入 Password
func (a *Account) BeforeSave(tx *gorm.DB) (err error) {
	if a.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.RawPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		a.Password = string(hash)
		a.RawPassword = ""
	}
	return nil
}

// CheckPassword 校验明文密码
func (a *Account) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.Password), []byte(plaintext)) == nil
}

// Profile 个人资料
// 对应数据库 profiles 表，会话解析时按 Uuid 读取
type Profile struct {
	gorm.Model
	Uuid        string `gorm:"column:uuid;uniqueIndex;type:char(20);not null;comment:用户唯一id"`
	DisplayName string `gorm:"column:display_name;type:varchar(50);not null;comment:显示名称"`
	Email       string `gorm:"column:email;type:varchar(100);comment:邮箱"`
	Avatar      string `gorm:"column:avatar;type:varchar(255);comment:头像"`
	Bio         string `gorm:"column:bio;type:varchar(255);comment:个人简介"`
	Phone       string `gorm:"column:phone;type:varchar(20);comment:电话"`
	Role        string `gorm:"column:role;type:varchar(10);not null;default:member;index;comment:角色 member/admin"`
	Status      int8   `gorm:"column:status;not null;default:0;comment:状态，0.正常，1.禁用"`
}

func (Profile) TableName() string {
	return "profiles"
}

// IsAdmin 是否管理员
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
