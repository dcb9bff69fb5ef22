package installer

// Step 安装步骤
type Step string

const (
	StepConnectRoot Step = "connect_root"
	StepProvisionDB Step = "provision_db"
	StepInitSchema  Step = "init_schema"
	StepSeedData    Step = "seed_data"
	StepWriteConfig Step = "write_config"
)

// Steps 按执行顺序排列的全部步骤
var Steps = []Step{StepConnectRoot, StepProvisionDB, StepInitSchema, StepSeedData, StepWriteConfig}

var stepLabels = map[Step]string{
	StepConnectRoot: "登录 MySQL root",
	StepProvisionDB: "创建数据库和账号",
	StepInitSchema:  "初始化表结构",
	StepSeedData:    "写入预置数据",
	StepWriteConfig: "写入配置文件",
}

// Label 步骤的中文名称
func (s Step) Label() string {
	return stepLabels[s]
}

// StepRecord 已完成的步骤
type StepRecord struct {
	Step  Step   `json:"step"`
	Label string `json:"label"`
}
