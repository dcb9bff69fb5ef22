package service

import (
	"context"
	"errors"

	"github.com/enteacher-core/internal/models"
	"gorm.io/gorm"
)

// ProductInput 商品创建/更新参数
type ProductInput struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gte=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

// ProductService 商品服务
type ProductService struct {
	db *gorm.DB
}

// NewProductService 创建商品服务
func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

// List 商品列表，q 不为空时按名称模糊匹配
func (s *ProductService) List(ctx context.Context, q string) ([]models.Product, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	query := s.db.WithContext(ctx).Order("id ASC")
	if q != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+q+"%")
	}
	products := []models.Product{}
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Get 获取商品
func (s *ProductService) Get(ctx context.Context, id int64) (*models.Product, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	var product models.Product
	if err := s.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// Create 创建商品
func (s *ProductService) Create(ctx context.Context, in *ProductInput) (*models.Product, error) {
	if s.db == nil {
		return nil, ErrDatabaseUnavailable
	}
	product := &models.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
	}
	if err := s.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update 整体更新商品
func (s *ProductService) Update(ctx context.Context, id int64, in *ProductInput) (*models.Product, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	product.Name = in.Name
	product.Description = in.Description
	product.Price = in.Price
	product.Stock = in.Stock
	if err := s.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	product, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(product).Error
}
