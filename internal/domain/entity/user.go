package entity

type User struct {
	ID   int64 `gorm:"primaryKey;autoIncrement"`
	Name string
}

type Category struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null"`
}

type City struct {
	ID   int64  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null"`
}
