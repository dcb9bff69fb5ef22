package installer

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"

	"github.com/enteacher-core/internal/database"
	"github.com/enteacher-core/internal/seed"
	"github.com/enteacher-core/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	successMessage = "安装完成，配置和预置数据已写入。"
	nextURL        = "/admin/login"
)

// Result 安装成功的结果
type Result struct {
	Success  bool         `json:"success"`
	Message  string       `json:"message"`
	NextURL  string       `json:"next_url"`
	Progress []StepRecord `json:"progress"`
}

// Installer 安装向导：connect_root -> provision_db -> init_schema -> seed_data -> write_config
// 每一步都是幂等的，重复执行安全
type Installer struct {
	dialer      Dialer
	provision   Provisioner
	configStore *store.ConfigStore
	stateStore  *store.InstallStateStore
	seeder      *seed.Seeder
	log         *zap.Logger
}

// Option 安装器选项
type Option func(*Installer)

// WithDialer 替换数据库连接方式
func WithDialer(d Dialer) Option {
	return func(i *Installer) { i.dialer = d }
}

// WithProvisioner 替换建库授权实现
func WithProvisioner(p Provisioner) Option {
	return func(i *Installer) { i.provision = p }
}

// New 创建安装器
func New(configStore *store.ConfigStore, stateStore *store.InstallStateStore, seeder *seed.Seeder, log *zap.Logger, opts ...Option) *Installer {
	if log == nil {
		log = zap.NewNop()
	}
	i := &Installer{
		dialer:      MySQLDialer{},
		provision:   ProvisionMySQL,
		configStore: configStore,
		stateStore:  stateStore,
		seeder:      seeder,
		log:         log,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// run 单次安装的执行状态
type run struct {
	progress []StepRecord
}

func (r *run) done(step Step) {
	observeStep(step, nil)
	r.progress = append(r.progress, StepRecord{Step: step, Label: step.Label()})
}

func (r *run) fail(step Step, kind Kind, message string, err error) *StepError {
	observeStep(step, err)
	return &StepError{
		Step:     step,
		Kind:     kind,
		Message:  message,
		Progress: append([]StepRecord{}, r.progress...),
		Err:      err,
	}
}

// Run 执行完整安装流程
// 失败时返回 *StepError，其中 Progress 为已完成的步骤
func (i *Installer) Run(ctx context.Context, req Request) (*Result, error) {
	req.ApplyDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	host, port := req.MySQLAddr()
	log := i.log.With(zap.String("host", host), zap.Int("port", port), zap.String("database", req.DatabaseName))
	r := &run{}

	root, err := i.dialer.DialRoot(ctx, host, port, req.MySQLRootPassword)
	if err != nil {
		log.Warn("root 连接失败", zap.Error(err))
		if isAccessDenied(err) {
			return nil, r.fail(StepConnectRoot, RootAuthFailed, "root 密码错误，无法连接 MySQL。", err)
		}
		return nil, r.fail(StepConnectRoot, RootUnreachable, "无法连接到 MySQL，请确认主机和 root 密码是否正确。", err)
	}
	r.done(StepConnectRoot)

	err = i.provision(ctx, root, &req)
	database.Close(root)
	if err != nil {
		log.Error("创建数据库或账号失败", zap.Error(err))
		return nil, r.fail(StepProvisionDB, GrantFailed, "创建数据库或账号失败，请确认 root 权限。", err)
	}
	r.done(StepProvisionDB)

	app, err := i.dialer.DialApp(ctx, host, port, req.DatabaseUser, req.DatabasePassword, req.DatabaseName)
	if err == nil {
		defer database.Close(app)
		err = seed.CreateSchema(ctx, app)
	}
	if err != nil {
		log.Error("初始化表结构失败", zap.Error(err))
		return nil, r.fail(StepInitSchema, SchemaConnFailed, "业务账号无法连接数据库，请检查账号密码或授权。", err)
	}
	r.done(StepInitSchema)

	if err := i.seed(ctx, app, &req); err != nil {
		log.Error("写入预置数据失败", zap.Error(err))
		return nil, i.seedError(r, err)
	}
	r.done(StepSeedData)

	if stepErr := i.writeConfig(r, &req, host, port); stepErr != nil {
		log.Error("写入配置文件失败", zap.Error(stepErr.Err), zap.String("path", stepErr.Path))
		return nil, stepErr
	}
	r.done(StepWriteConfig)

	log.Info("安装完成")
	return &Result{
		Success:  true,
		Message:  successMessage,
		NextURL:  nextURL,
		Progress: r.progress,
	}, nil
}

func (i *Installer) seed(ctx context.Context, db *gorm.DB, req *Request) error {
	report, err := i.seeder.SeedAll(ctx, db, seed.Options{
		Admin: store.AdminCredentials{Username: req.AdminUsername, Password: req.AdminPassword},
		SettingsOverrides: map[string]string{
			"domain":       req.ServerDomain,
			"ip":           req.ServerIP,
			"backend_port": itoa(req.BackendPort),
		},
		Integrations:      req.seedIntegrations(),
		OverwriteExisting: true,
	})
	if err != nil {
		return err
	}
	i.log.Debug("预置数据写入统计", zap.Any("report", report))
	return nil
}

func (i *Installer) seedError(r *run, err error) *StepError {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) && errors.Is(err, fs.ErrPermission) {
		e := r.fail(StepSeedData, SeedPermissionDenied, "读取预置数据时权限不足，请检查目录权限。", err)
		dir := i.seeder.Fixtures().Dir()
		e.Command = store.PermissionCommand(dir)
		e.Path = pathErr.Path
		return e
	}
	if isDBPermissionDenied(err) {
		return r.fail(StepSeedData, SeedPermissionDenied, "写入数据库时权限不足，请检查账户授权。", err)
	}
	return r.fail(StepSeedData, SeedFailed, "写入预置数据失败，请检查数据库状态后重试。", err)
}

// writeConfig 写入配置文件、预置数据快照，最后写入安装完成标记
func (i *Installer) writeConfig(r *run, req *Request, host string, port int) *StepError {
	stateDir := filepath.Dir(i.configStore.Path())
	fixtures := i.seeder.Fixtures()

	dbSection := map[string]interface{}{
		"host":          host,
		"port":          port,
		"name":          req.DatabaseName,
		"user":          req.DatabaseUser,
		"password":      req.DatabasePassword,
		"root_password": req.MySQLRootPassword,
	}
	site := map[string]interface{}{
		"domain":       req.ServerDomain,
		"ip":           req.ServerIP,
		"backend_port": req.BackendPort,
	}
	integrations := req.seedIntegrations()

	// installed=true 必须在其余文件全部写入成功后落盘
	writes := []struct {
		dir  string
		path string
		fn   func() error
	}{
		{stateDir, i.configStore.Path(), func() error {
			_, err := i.configStore.MergeUpdates(store.Document{"database": dbSection, "site": site})
			return err
		}},
		{fixtures.Dir(), fixtures.Path(seed.SystemConfigFile), func() error {
			return fixtures.PersistSeedConfig(seed.SeedConfig{
				ServerIP:      req.ServerIP,
				Domain:        req.ServerDomain,
				LoginUser:     req.AdminUsername,
				LoginPassword: req.AdminPassword,
				DBHost:        host,
				DBPort:        port,
				DBName:        req.DatabaseName,
				DBUser:        req.DatabaseUser,
				DBPassword:    req.DatabasePassword,
				RootPassword:  req.MySQLRootPassword,
			}, req.BackendPort)
		}},
		{stateDir, i.stateStore.Path(), func() error {
			return i.stateStore.MarkInstalled(store.Snapshot{
				Database: dbSection,
				Site:     site,
				Admin:    store.AdminCredentials{Username: req.AdminUsername, Password: req.AdminPassword},
				Wechat: map[string]interface{}{
					"app_id":  integrations.Wechat.AppID,
					"mch_id":  integrations.Wechat.MchID,
					"api_key": integrations.Wechat.APIKey,
				},
				SMS: map[string]interface{}{
					"provider":  integrations.SMS.Provider,
					"api_key":   integrations.SMS.APIKey,
					"sign_name": integrations.SMS.SignName,
				},
			})
		}},
	}

	for _, w := range writes {
		err := w.fn()
		if err == nil {
			continue
		}
		if errors.Is(err, fs.ErrPermission) {
			command := store.PermissionCommand(w.dir)
			e := r.fail(StepWriteConfig, ConfigPermissionDenied, "写入配置文件失败，请检查目录读写权限，或执行："+command, err)
			e.Code = CodeSeedDataPermissionDenied
			e.Command = command
			e.Path = w.dir
			return e
		}
		e := r.fail(StepWriteConfig, ConfigWriteFailed, "写入配置文件失败，请确认目录存在且有可用空间。", err)
		e.Code = CodeConfigWriteFailed
		e.Path = w.path
		return e
	}
	return nil
}
