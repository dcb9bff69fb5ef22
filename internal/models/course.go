package models

// Course 课程
type Course struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Title    string `gorm:"type:varchar(200);not null;comment:标题" json:"title"`
	Subtitle string `gorm:"type:varchar(255);default:'';comment:副标题" json:"subtitle"`
	Tag      string `gorm:"type:varchar(50);default:'';comment:标签" json:"tag"`
	Image    string `gorm:"type:varchar(500);default:'';comment:封面" json:"image"`

	Lessons []CourseLesson `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"lessons"`
}

// TableName 指定表名
func (Course) TableName() string {
	return "courses"
}

// CourseLesson 课程句子
type CourseLesson struct {
	ID       int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID int64  `gorm:"index;not null;comment:关联课程" json:"-"`
	Zh       string `gorm:"type:varchar(255);not null;comment:中文" json:"zh"`
	En       string `gorm:"type:varchar(255);not null;comment:英文" json:"en"`
	Phonetic string `gorm:"type:varchar(255);default:'';comment:音标" json:"phonetic"`
	Audio    string `gorm:"type:varchar(255);default:'';comment:音频" json:"audio"`
}

// TableName 指定表名
func (CourseLesson) TableName() string {
	return "course_lessons"
}
