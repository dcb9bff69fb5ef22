package installer

import (
	"errors"
	"fmt"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
)

// ErrInvalidRequest 安装参数不合法
var ErrInvalidRequest = errors.New("安装参数不合法")

// Kind 安装失败类型
type Kind int

const (
	RootAuthFailed Kind = iota + 1
	RootUnreachable
	GrantFailed
	SchemaConnFailed
	SeedPermissionDenied
	SeedFailed
	ConfigPermissionDenied
	ConfigWriteFailed
)

var kindNames = map[Kind]string{
	RootAuthFailed:         "root_auth_failed",
	RootUnreachable:        "root_unreachable",
	GrantFailed:            "grant_failed",
	SchemaConnFailed:       "schema_conn_failed",
	SeedPermissionDenied:   "seed_permission_denied",
	SeedFailed:             "seed_failed",
	ConfigPermissionDenied: "config_permission_denied",
	ConfigWriteFailed:      "config_write_failed",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// 错误码
const (
	CodeSeedDataPermissionDenied = "SEED_DATA_PERMISSION_DENIED"
	CodeConfigWriteFailed        = "CONFIG_WRITE_FAILED"
)

// StepError 安装步骤失败，Progress 为失败前已完成的步骤
type StepError struct {
	Step     Step
	Kind     Kind
	Message  string
	Progress []StepRecord
	Code     string
	Command  string
	Path     string
	Err      error
}

func (e *StepError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Step, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Step, e.Message)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Detail 返回给前端的错误详情
func (e *StepError) Detail() map[string]interface{} {
	detail := map[string]interface{}{
		"step":     e.Step,
		"message":  e.Message,
		"progress": e.Progress,
	}
	if e.Code != "" {
		detail["code"] = e.Code
	}
	if e.Command != "" {
		detail["command"] = e.Command
	}
	if e.Path != "" {
		detail["path"] = e.Path
	}
	return detail
}

// isAccessDenied 是否账号或密码错误
func isAccessDenied(err error) bool {
	var me *mysqldriver.MySQLError
	if errors.As(err, &me) && me.Number == 1045 {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "Access denied")
}

// isDBPermissionDenied 业务账号缺少表级权限
func isDBPermissionDenied(err error) bool {
	var me *mysqldriver.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1142 || me.Number == 1044
	}
	return false
}
