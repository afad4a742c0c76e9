package models

// Ad is a banner shown on the public landing page.
type Ad struct {
	ID    int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Photo string `gorm:"size:512" json:"photo"`
}

func (Ad) TableName() string { return "ads" }
