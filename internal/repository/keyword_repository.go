package repository

import (
	"edu_content_backend/internal/model"
	"edu_content_backend/internal/util"

	"gorm.io/gorm"
)

type KeywordRepository struct {
	DB *gorm.DB
}

func NewKeywordRepository(db *gorm.DB) *KeywordRepository {
	return &KeywordRepository{DB: db}
}

func (r *KeywordRepository) CreateKeyword(keyword *model.Keyword) error {
	return r.DB.Create(keyword).Error
}

func (r *KeywordRepository) FindKeywordByID(id uint) (*model.Keyword, error) {
	var keyword model.Keyword
	err := r.DB.First(&keyword, id).Error
	if err != nil {
		return nil, err
	}
	return &keyword, nil
}

func (r *KeywordRepository) FindAllKeywords() ([]model.Keyword, error) {
	var keywords []model.Keyword
	err := r.DB.Order("id").Find(&keywords).Error
	return keywords, err
}

// UpdateKeywordFields applies only the supplied fields; nil pointers leave
// the current value untouched, an empty string clears it.
func (r *KeywordRepository) UpdateKeywordFields(id uint, name, definition *string) (*model.Keyword, error) {
	keyword, err := r.FindKeywordByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if name != nil {
		updates["name"] = *name
	}
	if definition != nil {
		updates["definition"] = *definition
	}

	if len(updates) == 0 {
		return keyword, nil
	}

	if err := r.DB.Model(keyword).Updates(updates).Error; err != nil {
		return nil, err
	}
	return keyword, nil
}

// Reparent moves a keyword under a new parent after checking that the move
// does not close a cycle.
func (r *KeywordRepository) Reparent(id uint, newParentID uint) error {
	cyclic, err := r.WouldCreateCycle(id, newParentID)
	if err != nil {
		return err
	}
	if cyclic {
		return util.ErrKeywordCycle
	}
	return r.DB.Model(&model.Keyword{}).Where("id = ?", id).
		Update("parent_id", newParentID).Error
}

// WouldCreateCycle walks up from candidate parent to the root and reports
// whether the keyword itself appears on that path. The visited set bounds
// the walk if the stored tree is already corrupted.
func (r *KeywordRepository) WouldCreateCycle(keywordID, parentID uint) (bool, error) {
	visited := map[uint]bool{}
	current := parentID
	for {
		if current == keywordID {
			return true, nil
		}
		if visited[current] {
			return true, nil
		}
		visited[current] = true

		node, err := r.FindKeywordByID(current)
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		if node.ParentID == nil {
			return false, nil
		}
		current = *node.ParentID
	}
}

func (r *KeywordRepository) DeleteKeyword(id uint) error {
	return r.DB.Unscoped().Delete(&model.Keyword{}, id).Error
}

// --- KeywordHierarchy ---

func (r *KeywordRepository) CreateHierarchy(hierarchy *model.KeywordHierarchy) error {
	return r.DB.Create(hierarchy).Error
}

func (r *KeywordRepository) FindHierarchyByID(id uint) (*model.KeywordHierarchy, error) {
	var hierarchy model.KeywordHierarchy
	err := r.DB.First(&hierarchy, id).Error
	if err != nil {
		return nil, err
	}
	return &hierarchy, nil
}

func (r *KeywordRepository) FindKeywordsByHierarchy(hierarchyID uint) ([]model.Keyword, error) {
	var keywords []model.Keyword
	err := r.DB.Where("hierarchy_id = ?", hierarchyID).Order("id").Find(&keywords).Error
	return keywords, err
}

func (r *KeywordRepository) DeleteHierarchy(id uint) error {
	return r.DB.Unscoped().Delete(&model.KeywordHierarchy{}, id).Error
}

// LinkMaterialKeywords tags the material with every given keyword; existing
// links are kept as-is.
func (r *KeywordRepository) LinkMaterialKeywords(materialID uint, keywordIDs []uint) error {
	for _, kwID := range keywordIDs {
		var count int64
		err := r.DB.Table("material_keyword_links").
			Where("course_material_id = ? AND keyword_id = ?", materialID, kwID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		err = r.DB.Exec(
			"INSERT INTO material_keyword_links (course_material_id, keyword_id) VALUES (?, ?)",
			materialID, kwID,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *KeywordRepository) FindKeywordsForMaterial(materialID uint) ([]model.Keyword, error) {
	var keywords []model.Keyword
	err := r.DB.
		Joins("JOIN material_keyword_links mkl ON mkl.keyword_id = keywords.id").
		Where("mkl.course_material_id = ?", materialID).
		Order("keywords.id").
		Find(&keywords).Error
	return keywords, err
}
