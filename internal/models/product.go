package models

// Product 商品模型
type Product struct {
	ID          int64   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"type:varchar(100);not null;index;comment:商品名称" json:"name"`
	Description string  `gorm:"type:text;comment:描述" json:"description"`
	Price       float64 `gorm:"type:decimal(10,2);not null;comment:价格" json:"price"`
	Stock       int     `gorm:"default:0;comment:库存" json:"stock"`
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
