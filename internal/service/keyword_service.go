package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"edu_content_backend/internal/model"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/util"

	"gorm.io/gorm"
)

// KeywordNode is one node of the tree the extraction model returns; children
// nest to arbitrary depth.
type KeywordNode struct {
	Name       string        `json:"name"`
	Definition string        `json:"definition"`
	Children   []KeywordNode `json:"children"`
}

// ExtractKeywordNodes recovers the JSON array from a free-text model reply:
// everything between the first '[' and the last ']' inclusive. A missing
// pair or invalid JSON is ErrExtraction.
func ExtractKeywordNodes(response string) ([]KeywordNode, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end < start {
		return nil, util.ErrExtraction
	}

	var nodes []KeywordNode
	if err := json.Unmarshal([]byte(response[start:end+1]), &nodes); err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrExtraction, err)
	}
	return nodes, nil
}

type KeywordUpdate struct {
	Name       *string `json:"name"`
	Definition *string `json:"definition"`
}

type KeywordService struct {
	Repo *repository.KeywordRepository
	DB   *gorm.DB
}

func NewKeywordService(repo *repository.KeywordRepository, db *gorm.DB) *KeywordService {
	return &KeywordService{Repo: repo, DB: db}
}

// workItem pairs a parsed node with the persisted ID of its parent.
type workItem struct {
	node     KeywordNode
	parentID uint
}

// MaterializeTree persists the parsed node array as a keyword tree for the
// course, inside a single transaction: synthetic root, hierarchy, every node
// in pre-order (a parent's row exists before any child referencing it), the
// material tagging links, and the course's hierarchy reference. Any failure
// rolls the whole set back.
func (s *KeywordService) MaterializeTree(course *model.Course, materialID uint, nodes []KeywordNode) (*model.KeywordHierarchy, []model.Keyword, error) {
	var hierarchy *model.KeywordHierarchy
	var keywords []model.Keyword

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		kwRepo := repository.NewKeywordRepository(tx)
		courseRepo := repository.NewCourseRepository(tx)

		root := &model.Keyword{
			Name:       course.Name,
			Definition: fmt.Sprintf("Root for course: %s", course.Name),
		}
		if err := kwRepo.CreateKeyword(root); err != nil {
			return err
		}

		hierarchy = &model.KeywordHierarchy{RootID: &root.ID}
		if err := kwRepo.CreateHierarchy(hierarchy); err != nil {
			return err
		}

		root.HierarchyID = &hierarchy.ID
		if err := tx.Model(root).Update("hierarchy_id", hierarchy.ID).Error; err != nil {
			return err
		}
		keywords = append(keywords, *root)

		// Explicit work-list instead of recursion; children pushed in
		// reverse so pop order stays pre-order, matching document order.
		stack := make([]workItem, 0, len(nodes))
		for i := len(nodes) - 1; i >= 0; i-- {
			stack = append(stack, workItem{node: nodes[i], parentID: root.ID})
		}

		for len(stack) > 0 {
			item := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			parentID := item.parentID
			keyword := &model.Keyword{
				Name:        item.node.Name,
				Definition:  item.node.Definition,
				ParentID:    &parentID,
				HierarchyID: &hierarchy.ID,
			}
			if err := kwRepo.CreateKeyword(keyword); err != nil {
				return err
			}
			keywords = append(keywords, *keyword)

			for i := len(item.node.Children) - 1; i >= 0; i-- {
				stack = append(stack, workItem{node: item.node.Children[i], parentID: keyword.ID})
			}
		}

		if materialID != 0 {
			ids := make([]uint, len(keywords))
			for i, kw := range keywords {
				ids[i] = kw.ID
			}
			if err := kwRepo.LinkMaterialKeywords(materialID, ids); err != nil {
				return err
			}
		}

		if course.KeywordHierarchyID == nil {
			if _, err := courseRepo.UpdateFields(course.ID, nil, &hierarchy.ID); err != nil {
				return err
			}
			course.KeywordHierarchyID = &hierarchy.ID
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return hierarchy, keywords, nil
}

func (s *KeywordService) GetHierarchy(id uint) (*model.KeywordHierarchy, error) {
	hierarchy, err := s.Repo.FindHierarchyByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrHierarchyNotFound
	}
	if err != nil {
		return nil, err
	}
	return hierarchy, nil
}

// GetHierarchyKeywords returns the hierarchy's tree flattened in pre-order
// from the root. A visited set guards the walk against cycles introduced by
// corrupted data.
func (s *KeywordService) GetHierarchyKeywords(id uint) ([]model.Keyword, error) {
	hierarchy, err := s.GetHierarchy(id)
	if err != nil {
		return nil, err
	}
	if hierarchy.RootID == nil {
		return []model.Keyword{}, nil
	}

	members, err := s.Repo.FindKeywordsByHierarchy(id)
	if err != nil {
		return nil, err
	}

	byID := make(map[uint]model.Keyword, len(members))
	children := make(map[uint][]uint, len(members))
	for _, kw := range members {
		byID[kw.ID] = kw
		if kw.ParentID != nil {
			children[*kw.ParentID] = append(children[*kw.ParentID], kw.ID)
		}
	}

	result := make([]model.Keyword, 0, len(members))
	visited := make(map[uint]bool, len(members))
	stack := []uint{*hierarchy.RootID}

	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if visited[id] {
			continue
		}
		visited[id] = true

		kw, ok := byID[id]
		if !ok {
			continue
		}
		result = append(result, kw)

		kids := children[id]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}

	return result, nil
}

func (s *KeywordService) GetKeyword(id uint) (*model.Keyword, error) {
	keyword, err := s.Repo.FindKeywordByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrKeywordNotFound
	}
	if err != nil {
		return nil, err
	}
	return keyword, nil
}

// UpdateKeyword applies a partial update: nil fields stay untouched, empty
// strings clear the stored value.
func (s *KeywordService) UpdateKeyword(id uint, update KeywordUpdate) (*model.Keyword, error) {
	keyword, err := s.Repo.UpdateKeywordFields(id, update.Name, update.Definition)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrKeywordNotFound
	}
	if err != nil {
		return nil, err
	}
	return keyword, nil
}
