package auth

import (
	"time"
)

// User 医生账号实体
// ID使用UUID格式（string），避免ObjectID转换的麻烦
type User struct {
	ID          string       `bson:"_id,omitempty" json:"id"`                    // UUID格式的ID
	Username    string       `bson:"username" json:"username"`                   // 用户名（唯一）
	Email       string       `bson:"email" json:"email"`                         // 邮箱（唯一）
	Password    string       `bson:"password" json:"-"`                          // 密码（加密存储，不返回）
	Role        UserRole     `bson:"role" json:"role"`                           // 角色
	Status      UserStatus   `bson:"status" json:"status"`                       // 状态
	Profile     *UserProfile `bson:"profile,omitempty" json:"profile,omitempty"` // 执业信息
	LastLoginAt *time.Time   `bson:"last_login_at,omitempty" json:"last_login_at,omitempty"`
	CreatedAt   time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `bson:"updated_at" json:"updated_at"`
}

// UserProfile 医生执业信息
type UserProfile struct {
	Nickname   string `bson:"nickname,omitempty" json:"nickname,omitempty"`
	Department string `bson:"department,omitempty" json:"department,omitempty"` // 科室
	Title      string `bson:"title,omitempty" json:"title,omitempty"`           // 职称
	LicenseNo  string `bson:"license_no,omitempty" json:"license_no,omitempty"` // 执业证号
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// UserRole 账号角色
type UserRole string

const (
	RoleAdmin  UserRole = "admin"  // 管理员
	RoleDoctor UserRole = "doctor" // 医生
)

// IsValid 检查角色是否有效
func (r UserRole) IsValid() bool {
	return r == RoleAdmin || r == RoleDoctor
}

// String 返回角色字符串
func (r UserRole) String() string {
	return string(r)
}

// UserStatus 账号状态
type UserStatus string

const (
	UserStatusActive   UserStatus = "active"   // 激活
	UserStatusInactive UserStatus = "inactive" // 未激活（注册待审核）
	UserStatusBanned   UserStatus = "banned"   // 禁用
)

// IsValid 检查状态是否有效
func (s UserStatus) IsValid() bool {
	return s == UserStatusActive || s == UserStatusInactive || s == UserStatusBanned
}

// String 返回状态字符串
func (s UserStatus) String() string {
	return string(s)
}
