package service

import (
	"context"
	"errors"

	"github.com/enteacher-core/internal/models"
	"gorm.io/gorm"
)

// LessonInput 课程句子
type LessonInput struct {
	Zh       string `json:"zh" binding:"required"`
	En       string `json:"en" binding:"required"`
	Phonetic string `json:"phonetic"`
	Audio    string `json:"audio"`
}

// CourseInput 课程创建/更新参数
type CourseInput struct {
	Title    string        `json:"title" binding:"required"`
	Subtitle string        `json:"subtitle"`
	Tag      string        `json:"tag"`
	Image    string        `json:"image"`
	Lessons  []LessonInput `json:"lessons" binding:"dive"`
}

func (in *CourseInput) lessons() []models.CourseLesson {
	lessons := make([]models.CourseLesson, 0, len(in.Lessons))
	for _, l := range in.Lessons {
		lessons = append(lessons, models.CourseLesson{Zh: l.Zh, En: l.En, Phonetic: l.Phonetic, Audio: l.Audio})
	}
	return lessons
}

// CourseService 课程服务
type CourseService struct {
	db *gorm.DB
}

// NewCourseService 创建课程服务
func NewCourseService(db *gorm.DB) *CourseService {
	return &CourseService{db: db}
}

func preloadLessons(db *gorm.DB) *gorm.DB {
	return db.Order("course_lessons.id ASC")
}

// List 课程列表（含句子）
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	courses := []models.Course{}
	if err := s.db.WithContext(ctx).Preload("Lessons", preloadLessons).Order("id ASC").Find(&courses).Error; err != nil {
		return nil, err
	}
	return courses, nil
}

// Get 获取课程
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	var course models.Course
	if err := s.db.WithContext(ctx).Preload("Lessons", preloadLessons).First(&course, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// Create 创建课程及句子
func (s *CourseService) Create(ctx context.Context, in *CourseInput) (*models.Course, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	course := &models.Course{
		Title:    in.Title,
		Subtitle: in.Subtitle,
		Tag:      in.Tag,
		Image:    in.Image,
		Lessons:  in.lessons(),
	}
	if err := s.db.WithContext(ctx).Create(course).Error; err != nil {
		return nil, err
	}
	return course, nil
}

// Update 更新课程，句子整体替换
func (s *CourseService) Update(ctx context.Context, id int64, in *CourseInput) (*models.Course, error) {
	course, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Course{ID: course.ID}).Updates(map[string]interface{}{
			"title":    in.Title,
			"subtitle": in.Subtitle,
			"tag":      in.Tag,
			"image":    in.Image,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("course_id = ?", id).Delete(&models.CourseLesson{}).Error; err != nil {
			return err
		}
		lessons := in.lessons()
		for i := range lessons {
			lessons[i].CourseID = id
		}
		if len(lessons) == 0 {
			return nil
		}
		return tx.Create(&lessons).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete 删除课程及其句子
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	course, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", course.ID).Delete(&models.CourseLesson{}).Error; err != nil {
			return err
		}
		return tx.Delete(course).Error
	})
}
