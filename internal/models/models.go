package models

// All 需要建表的全部模型，按外键依赖排序
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&SystemSetting{},
		&IntegrationConfig{},
		&MembershipSetting{},
		&RechargeRecord{},
		&AdminDashboardStat{},
		&AdminUserProfile{},
		&AdminOrder{},
		&AdminOrderItem{},
		&Course{},
		&CourseLesson{},
	}
}
