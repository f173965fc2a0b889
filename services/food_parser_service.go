package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/aivanb/LifestyleApp/config"
	"github.com/aivanb/LifestyleApp/models"

	"gorm.io/gorm"
)

// MatchConfig holds the tolerances used when deciding whether caller
// metadata is compatible with a stored food. Injected so tests and
// deployments can tune them.
type MatchConfig struct {
	CaloriesTolerance    float64 // kcal
	ProteinTolerance     float64 // g
	ServingSizeTolerance float64
}

func DefaultMatchConfig() MatchConfig {
	return MatchConfig{
		CaloriesTolerance:    10,
		ProteinTolerance:     2,
		ServingSizeTolerance: 0.1,
	}
}

// Resolution sources reported per candidate.
const (
	sourceMeal          = "meal"
	sourceFoodExact     = "food_exact"
	sourceFoodDuplicate = "food_duplicate"
	sourceFoodNew       = "food_new"
)

// foodCandidate is one {name, metadata} unit extracted from free text.
// It lives only for the duration of a single ParseFoodInput call.
type foodCandidate struct {
	Name     string                 `json:"name"`
	Metadata map[string]interface{} `json:"metadata"`
}

type ParsedFoodDetail struct {
	FoodID        uint    `json:"food_id"`
	FoodName      string  `json:"food_name"`
	Calories      float64 `json:"calories"`
	Protein       float64 `json:"protein"`
	Fat           float64 `json:"fat"`
	Carbohydrates float64 `json:"carbohydrates"`
}

type ParsedMealDetail struct {
	MealID   uint   `json:"meal_id"`
	MealName string `json:"meal_name"`
}

type ParsedFood struct {
	Name     string            `json:"name"`
	Source   string            `json:"source"`
	Servings float64           `json:"servings"`
	Error    string            `json:"error,omitempty"`
	Food     *ParsedFoodDetail `json:"food,omitempty"`
	Meal     *ParsedMealDetail `json:"meal,omitempty"`
}

type CreatedLog struct {
	LogID    uint    `json:"log_id"`
	FoodName string  `json:"food_name"`
	Servings float64 `json:"servings"`
}

type CreatedMeal struct {
	MealID   uint   `json:"meal_id"`
	MealName string `json:"meal_name"`
}

// ParseResult is the composite outcome of one pipeline run. Success is
// true only when no candidate recorded an error.
type ParseResult struct {
	FoodsParsed []ParsedFood `json:"foods_parsed"`
	LogsCreated []CreatedLog `json:"logs_created"`
	MealCreated *CreatedMeal `json:"meal_created"`
	Errors      []string     `json:"errors"`
	Success     bool         `json:"success"`
}

// resolvedCandidate carries a candidate through resolution. At most one
// of food/meal is set.
type resolvedCandidate struct {
	name     string
	metadata map[string]interface{}
	servings float64
	source   string
	food     *models.Food
	meal     *models.Meal
	err      error
}

func (rc *resolvedCandidate) toParsedFood() ParsedFood {
	pf := ParsedFood{Name: rc.name, Source: rc.source, Servings: rc.servings}
	if rc.err != nil {
		pf.Error = rc.err.Error()
	}
	if rc.food != nil {
		pf.Food = &ParsedFoodDetail{
			FoodID:        rc.food.ID,
			FoodName:      rc.food.FoodName,
			Calories:      rc.food.Calories,
			Protein:       rc.food.Protein,
			Fat:           rc.food.Fat,
			Carbohydrates: rc.food.Carbohydrates,
		}
	}
	if rc.meal != nil {
		pf.Meal = &ParsedMealDetail{MealID: rc.meal.ID, MealName: rc.meal.MealName}
	}
	return pf
}

// FoodParserService turns a free-text food description into resolved
// foods, log rows and optionally a meal. Candidates are resolved
// strictly in parsed order: a food created for an earlier candidate is
// visible to the lookups and naming counters of later ones in the same
// call.
type FoodParserService struct {
	store   FoodStore
	gateway PromptSender
	synth   *MetadataSynthesizer
	match   MatchConfig
	hub     *RealtimeHub
}

// NewFoodParserService wires the pipeline. hub may be nil when no
// realtime push is wanted.
func NewFoodParserService(store FoodStore, gateway PromptSender, match MatchConfig, hub *RealtimeHub) *FoodParserService {
	return &FoodParserService{
		store:   store,
		gateway: gateway,
		synth:   NewMetadataSynthesizer(gateway),
		match:   match,
		hub:     hub,
	}
}

// ParseFoodInput runs the whole pipeline for one input text. Errors are
// collected per candidate; a failing candidate never aborts its siblings.
func (s *FoodParserService) ParseFoodInput(userID uint, inputText string, createMeal bool) *ParseResult {
	result := &ParseResult{
		FoodsParsed: []ParsedFood{},
		LogsCreated: []CreatedLog{},
		Errors:      []string{},
	}

	candidates := s.parseFoodsFromText(userID, inputText)
	if len(candidates) == 0 {
		result.Errors = append(result.Errors, "no foods could be parsed from input")
		return result
	}

	resolved := make([]*resolvedCandidate, 0, len(candidates))
	for _, cand := range candidates {
		rc := s.resolveCandidate(userID, cand)
		resolved = append(resolved, rc)
		result.FoodsParsed = append(result.FoodsParsed, rc.toParsedFood())
		if rc.err != nil {
			result.Errors = append(result.Errors, rc.err.Error())
		}
	}

	// One log row per food-bearing outcome. Referencing a meal logs
	// nothing for that candidate.
	for _, rc := range resolved {
		if rc.food == nil {
			continue
		}
		entry, err := s.createFoodLog(userID, rc, inputText)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to log %q: %v", rc.food.FoodName, err))
			continue
		}
		result.LogsCreated = append(result.LogsCreated, CreatedLog{
			LogID:    entry.ID,
			FoodName: rc.food.FoodName,
			Servings: rc.servings,
		})
		if s.hub != nil {
			s.hub.BroadcastLogEvent(userID, entry, rc.food)
		}
	}

	if createMeal && hasResolvedOutcome(resolved) {
		meal, err := s.createMealFromResolved(userID, resolved, inputText)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("failed to create meal: %v", err))
		} else {
			result.MealCreated = &CreatedMeal{MealID: meal.ID, MealName: meal.MealName}
		}
	}

	result.Success = len(result.Errors) == 0
	return result
}

// GenerateMissingMetadata completes a partial metadata map for manual
// food creation. Caller values always survive the merge.
func (s *FoodParserService) GenerateMissingMetadata(userID uint, foodName string, partial map[string]interface{}) map[string]interface{} {
	return s.synth.Generate(userID, foodName, partial)
}

// parseFoodsFromText asks the gateway to split the text into candidates.
// Failure of any kind yields an empty list; ordering of the returned
// candidates is preserved exactly.
func (s *FoodParserService) parseFoodsFromText(userID uint, inputText string) []foodCandidate {
	res := s.gateway.SendPrompt(userID, buildFoodParsingPrompt(inputText))
	if !res.Success {
		config.GetLogger().WithField("error", res.Error).Error("food parsing prompt failed")
		return nil
	}

	text := stripCodeFences(res.Response)
	var candidates []foodCandidate
	if err := json.Unmarshal([]byte(text), &candidates); err != nil {
		config.GetLogger().WithFields(map[string]interface{}{
			"error":    err.Error(),
			"response": truncate(text, 500),
		}).Error("failed to parse candidate JSON")
		return nil
	}
	return candidates
}

// resolveCandidate applies the match/duplicate/create policy for one
// candidate, in fixed order: own meals, then foods, then a new food.
func (s *FoodParserService) resolveCandidate(userID uint, cand foodCandidate) *resolvedCandidate {
	rc := &resolvedCandidate{
		name:     strings.TrimSpace(cand.Name),
		metadata: cand.Metadata,
		servings: 1,
	}
	if rc.metadata == nil {
		rc.metadata = map[string]interface{}{}
	}
	if v, ok := toFloat(rc.metadata["servings"]); ok && v > 0 {
		rc.servings = v
	}

	meal, err := s.store.FindMealByName(userID, rc.name)
	if err != nil {
		rc.err = fmt.Errorf("failed to resolve %q: %v", rc.name, err)
		return rc
	}
	if meal != nil {
		rc.source = sourceMeal
		rc.meal = meal
		return rc
	}

	foods, err := s.store.FindFoodsByName(rc.name)
	if err != nil {
		rc.err = fmt.Errorf("failed to resolve %q: %v", rc.name, err)
		return rc
	}
	if len(foods) > 0 {
		existing := &foods[0]
		if s.metadataMatches(existing, rc.metadata) {
			rc.source = sourceFoodExact
			rc.food = existing
			return rc
		}
		dup, err := s.createFoodDuplicate(existing, rc.metadata)
		if err != nil {
			rc.err = fmt.Errorf("failed to resolve %q: %v", rc.name, err)
			return rc
		}
		rc.source = sourceFoodDuplicate
		rc.food = dup
		return rc
	}

	created, err := s.createNewFood(userID, rc.name, rc.metadata)
	if err != nil {
		rc.err = fmt.Errorf("failed to resolve %q: %v", rc.name, err)
		return rc
	}
	rc.source = sourceFoodNew
	rc.food = created
	return rc
}

// metadataMatches decides whether the caller's hints are close enough to
// reuse the stored row. Empty metadata always matches.
func (s *FoodParserService) metadataMatches(food *models.Food, md map[string]interface{}) bool {
	if len(md) == 0 {
		return true
	}

	if v, ok := md["calories"]; ok {
		f, numeric := toFloat(v)
		if !numeric || math.Abs(food.Calories-f) > s.match.CaloriesTolerance {
			return false
		}
	}
	if v, ok := md["protein"]; ok {
		f, numeric := toFloat(v)
		if !numeric || math.Abs(food.Protein-f) > s.match.ProteinTolerance {
			return false
		}
	}
	if v, ok := md["brand"]; ok {
		if brand, _ := v.(string); brand != "" {
			// A lone brand hint against an unbranded row reuses the row.
			if food.Brand == "" && len(md) == 1 {
				return true
			}
			if food.Brand != brand {
				return false
			}
		}
	}
	if v, ok := md["serving_size"]; ok {
		f, numeric := toFloat(v)
		if !numeric || math.Abs(food.ServingSize-f) > s.match.ServingSizeTolerance {
			return false
		}
	}
	if v, ok := md["unit"]; ok {
		unit, isString := v.(string)
		if !isString || unit != food.Unit {
			return false
		}
	}
	return true
}

// createFoodDuplicate clones a stored food under a "(variant)" name and
// overlays the caller's truthy whitelisted values. Visibility is carried
// over from the original.
func (s *FoodParserService) createFoodDuplicate(original *models.Food, md map[string]interface{}) (*models.Food, error) {
	newName := fmt.Sprintf("%s (variant)", original.FoodName)
	counter := 1
	for {
		exists, err := s.store.FoodNameExists(newName)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
		counter++
		newName = fmt.Sprintf("%s (variant %d)", original.FoodName, counter)
	}

	dup := *original
	dup.Model = gorm.Model{}
	dup.FoodName = newName
	if original.Cost != nil {
		c := *original.Cost
		dup.Cost = &c
	}
	applyMetadataToFood(&dup, md, true)

	if err := s.store.CreateFood(&dup); err != nil {
		return nil, err
	}
	return &dup, nil
}

// createNewFood synthesizes the full nutrient record and inserts it. New
// AI-originated foods default to public.
func (s *FoodParserService) createNewFood(userID uint, name string, md map[string]interface{}) (*models.Food, error) {
	complete := s.synth.Generate(userID, name, filterMetadata(md))

	foodName := name
	exists, err := s.store.FoodNameExists(foodName)
	if err != nil {
		return nil, err
	}
	if exists {
		counter := 1
		for {
			candidate := fmt.Sprintf("%s (%d)", name, counter)
			exists, err := s.store.FoodNameExists(candidate)
			if err != nil {
				return nil, err
			}
			if !exists {
				foodName = candidate
				break
			}
			counter++
		}
	}

	food := &models.Food{FoodName: foodName, MakePublic: true}
	applyMetadataToFood(food, complete, false)

	if err := s.store.CreateFood(food); err != nil {
		return nil, err
	}
	return food, nil
}

func (s *FoodParserService) createFoodLog(userID uint, rc *resolvedCandidate, inputText string) (*models.FoodLog, error) {
	provenance := inputText
	entry := &models.FoodLog{
		UserID:      userID,
		FoodID:      rc.food.ID,
		Servings:    rc.servings,
		Measurement: rc.food.Unit,
		DateTime:    time.Now(),
		VoiceInput:  &provenance,
	}
	if err := s.store.CreateFoodLog(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// createMealFromResolved groups the run's outcomes into a fresh meal.
// Food outcomes become rows with their servings; meal outcomes are
// flattened by copying the referenced meal's rows.
func (s *FoodParserService) createMealFromResolved(userID uint, resolved []*resolvedCandidate, inputText string) (*models.Meal, error) {
	mealName, err := s.generateMealName(userID, inputText)
	if err != nil {
		return nil, err
	}

	meal := &models.Meal{UserID: userID, MealName: mealName}
	if err := s.store.CreateMeal(meal); err != nil {
		return nil, err
	}

	for _, rc := range resolved {
		switch {
		case rc.food != nil:
			mf := &models.MealFood{MealID: meal.ID, FoodID: rc.food.ID, Servings: rc.servings}
			if err := s.store.CreateMealFood(mf); err != nil {
				return nil, err
			}
		case rc.meal != nil:
			rows, err := s.store.ListMealFoods(rc.meal.ID)
			if err != nil {
				return nil, err
			}
			for _, row := range rows {
				mf := &models.MealFood{MealID: meal.ID, FoodID: row.FoodID, Servings: row.Servings}
				if err := s.store.CreateMealFood(mf); err != nil {
					return nil, err
				}
			}
		}
	}
	return meal, nil
}

// generateMealName derives a unique per-user meal name from the first 50
// characters of the input.
func (s *FoodParserService) generateMealName(userID uint, inputText string) (string, error) {
	base := strings.TrimSpace(inputText)
	if runes := []rune(base); len(runes) > 50 {
		base = strings.TrimSpace(string(runes[:50]))
	}

	name := base
	counter := 1
	for {
		exists, err := s.store.MealNameExists(userID, name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
		counter++
		name = fmt.Sprintf("%s (%d)", base, counter)
	}
}

func hasResolvedOutcome(resolved []*resolvedCandidate) bool {
	for _, rc := range resolved {
		if rc.err == nil {
			return true
		}
	}
	return false
}

// applyMetadataToFood writes whitelisted metadata values onto the food
// row. With onlyTruthy set, zero/empty values are skipped (the duplicate
// overlay semantics).
func applyMetadataToFood(food *models.Food, md map[string]interface{}, onlyTruthy bool) {
	for key, value := range md {
		if onlyTruthy && !truthy(value) {
			continue
		}
		switch key {
		case "unit":
			if v, ok := value.(string); ok {
				food.Unit = v
			}
		case "food_group":
			if v, ok := value.(string); ok {
				food.FoodGroup = v
			}
		case "brand":
			if v, ok := value.(string); ok {
				food.Brand = v
			}
		case "cost":
			if f, ok := toFloat(value); ok {
				food.Cost = &f
			}
		default:
			if ptr := numericField(food, key); ptr != nil {
				if f, ok := toFloat(value); ok {
					*ptr = f
				}
			}
		}
	}
}

func numericField(food *models.Food, key string) *float64 {
	switch key {
	case "serving_size":
		return &food.ServingSize
	case "calories":
		return &food.Calories
	case "protein":
		return &food.Protein
	case "fat":
		return &food.Fat
	case "carbohydrates":
		return &food.Carbohydrates
	case "fiber":
		return &food.Fiber
	case "sodium":
		return &food.Sodium
	case "sugar":
		return &food.Sugar
	case "saturated_fat":
		return &food.SaturatedFat
	case "trans_fat":
		return &food.TransFat
	case "calcium":
		return &food.Calcium
	case "iron":
		return &food.Iron
	case "magnesium":
		return &food.Magnesium
	case "cholesterol":
		return &food.Cholesterol
	case "vitamin_a":
		return &food.VitaminA
	case "vitamin_c":
		return &food.VitaminC
	case "vitamin_d":
		return &food.VitaminD
	case "caffeine":
		return &food.Caffeine
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	}
	return true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
