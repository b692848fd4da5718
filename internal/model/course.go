package model

type Course struct {
	BaseModel
	Name               string `gorm:"size:255;not null;index" json:"name"`
	KeywordHierarchyID *uint  `gorm:"index" json:"keywordHierarchyId"`

	Materials []CourseMaterial `gorm:"foreignKey:CourseID" json:"materials,omitempty"`
	Students  []User           `gorm:"many2many:user_course_links" json:"-"`
}

func (Course) TableName() string {
	return "courses"
}

type CourseMaterial struct {
	BaseModel
	Title     string `gorm:"size:255;not null" json:"title"`
	CourseID  uint   `gorm:"index;not null" json:"courseId"`
	ObjectKey string `gorm:"size:500" json:"objectKey"`

	Keywords []Keyword `gorm:"many2many:material_keyword_links" json:"keywords,omitempty"`
}

func (CourseMaterial) TableName() string {
	return "course_materials"
}
