package services

import (
	"fmt"
	"strings"
	"testing"

	"github.com/aivanb/LifestyleApp/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedGateway replays canned completions in order. An exhausted
// script reports a gateway failure, like a dead upstream would.
type scriptedGateway struct {
	responses []PromptResult
	prompts   []string
}

func (g *scriptedGateway) SendPrompt(userID uint, prompt string) PromptResult {
	g.prompts = append(g.prompts, prompt)
	if len(g.responses) == 0 {
		return PromptResult{Success: false, Error: "no scripted response"}
	}
	r := g.responses[0]
	g.responses = g.responses[1:]
	return r
}

func completion(text string) PromptResult {
	return PromptResult{Success: true, Response: text}
}

func gatewayDown() PromptResult {
	return PromptResult{Success: false, Error: "upstream unavailable"}
}

// memStore is an in-memory FoodStore with the same visibility semantics
// as the real one: rows created mid-run are seen by later lookups.
type memStore struct {
	foods     []models.Food
	meals     []models.Meal
	mealFoods []models.MealFood
	logs      []models.FoodLog
	nextID    uint
	lookupErr map[string]error
}

func newMemStore() *memStore {
	return &memStore{lookupErr: map[string]error{}}
}

func (m *memStore) id() uint {
	m.nextID++
	return m.nextID
}

func (m *memStore) addFood(f models.Food) models.Food {
	f.ID = m.id()
	m.foods = append(m.foods, f)
	return f
}

func (m *memStore) addMeal(userID uint, name string, rows ...models.MealFood) models.Meal {
	meal := models.Meal{UserID: userID, MealName: name}
	meal.ID = m.id()
	m.meals = append(m.meals, meal)
	for _, r := range rows {
		r.MealID = meal.ID
		r.Model.ID = m.id()
		m.mealFoods = append(m.mealFoods, r)
	}
	return meal
}

func (m *memStore) FindMealByName(userID uint, name string) (*models.Meal, error) {
	for i := range m.meals {
		if m.meals[i].UserID == userID && strings.EqualFold(m.meals[i].MealName, name) {
			meal := m.meals[i]
			return &meal, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindFoodsByName(name string) ([]models.Food, error) {
	if err := m.lookupErr[name]; err != nil {
		return nil, err
	}
	var out []models.Food
	for _, f := range m.foods {
		if strings.EqualFold(f.FoodName, name) {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memStore) FoodNameExists(name string) (bool, error) {
	for _, f := range m.foods {
		if f.FoodName == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) MealNameExists(userID uint, name string) (bool, error) {
	for _, meal := range m.meals {
		if meal.UserID == userID && meal.MealName == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) CreateFood(food *models.Food) error {
	food.ID = m.id()
	m.foods = append(m.foods, *food)
	return nil
}

func (m *memStore) CreateMeal(meal *models.Meal) error {
	meal.ID = m.id()
	m.meals = append(m.meals, *meal)
	return nil
}

func (m *memStore) CreateMealFood(mf *models.MealFood) error {
	mf.ID = m.id()
	m.mealFoods = append(m.mealFoods, *mf)
	return nil
}

func (m *memStore) ListMealFoods(mealID uint) ([]models.MealFood, error) {
	var out []models.MealFood
	for _, r := range m.mealFoods {
		if r.MealID == mealID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memStore) CreateFoodLog(entry *models.FoodLog) error {
	entry.ID = m.id()
	m.logs = append(m.logs, *entry)
	return nil
}

func (m *memStore) mealFoodCount(mealID uint) int {
	n := 0
	for _, r := range m.mealFoods {
		if r.MealID == mealID {
			n++
		}
	}
	return n
}

func newParser(store FoodStore, gw PromptSender) *FoodParserService {
	return NewFoodParserService(store, gw, DefaultMatchConfig(), nil)
}

func TestParseFoodInputExactMatch(t *testing.T) {
	store := newMemStore()
	store.addFood(models.Food{FoodName: "chicken breast", Calories: 165, Protein: 31, Unit: "g"})

	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "chicken breast", "metadata": {}}]`),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "chicken breast", false)

	require.True(t, res.Success)
	require.Len(t, res.FoodsParsed, 1)
	assert.Equal(t, "food_exact", res.FoodsParsed[0].Source)
	assert.Len(t, res.LogsCreated, 1)
	assert.Len(t, store.foods, 1, "no new food rows for an exact match")
	assert.Equal(t, "g", store.logs[0].Measurement)
	assert.Equal(t, 1.0, store.logs[0].Servings)
}

func TestParseFoodInputConflictingMetadataCreatesVariant(t *testing.T) {
	store := newMemStore()
	original := store.addFood(models.Food{FoodName: "chicken breast", Calories: 165, Protein: 31, Unit: "g"})

	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "chicken breast", "metadata": {"calories": 200}}]`),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "chicken breast", false)

	require.True(t, res.Success)
	require.Len(t, res.FoodsParsed, 1)
	assert.Equal(t, "food_duplicate", res.FoodsParsed[0].Source)
	require.Len(t, store.foods, 2)

	variant := store.foods[1]
	assert.Equal(t, "chicken breast (variant)", variant.FoodName)
	assert.Equal(t, 200.0, variant.Calories, "caller value overrides the clone")
	assert.Equal(t, 31.0, variant.Protein, "untouched fields copied from the original")
	assert.Equal(t, original.MakePublic, variant.MakePublic, "visibility carried over")

	require.Len(t, res.LogsCreated, 1)
	assert.Equal(t, variant.ID, store.logs[0].FoodID, "log points at the variant row")
}

func TestParseFoodInputVariantCounterSkipsTakenNames(t *testing.T) {
	store := newMemStore()
	store.addFood(models.Food{FoodName: "oatmeal", Calories: 380})
	store.addFood(models.Food{FoodName: "oatmeal (variant)"})
	for i := 2; i <= 5; i++ {
		store.addFood(models.Food{FoodName: fmt.Sprintf("oatmeal (variant %d)", i)})
	}

	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "oatmeal", "metadata": {"calories": 100}}]`),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "oatmeal", false)

	require.True(t, res.Success)
	created := store.foods[len(store.foods)-1]
	assert.Equal(t, "oatmeal (variant 6)", created.FoodName)
}

func TestParseFoodInputNewFoodKeepsCallerValues(t *testing.T) {
	store := newMemStore()

	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "salmon fillet", "metadata": {"calories": 208, "protein": 25, "fat": 12}}]`),
		completion(`{"serving_size": 100, "unit": "g", "calories": 150, "protein": 20, "fat": 5, "carbohydrates": 0, "fiber": 2, "sodium": 60, "sugar": 0, "saturated_fat": 3, "trans_fat": 0, "calcium": 12, "iron": 0.3, "magnesium": 27, "cholesterol": 55, "vitamin_a": 12, "vitamin_c": 0, "vitamin_d": 11, "caffeine": 0, "food_group": "protein", "brand": "", "cost": null}`),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "salmon fillet", false)

	require.True(t, res.Success)
	require.Len(t, store.foods, 1)
	food := store.foods[0]
	assert.Equal(t, "salmon fillet", food.FoodName)
	assert.Equal(t, 208.0, food.Calories)
	assert.Equal(t, 25.0, food.Protein)
	assert.Equal(t, 12.0, food.Fat)
	assert.Equal(t, 2.0, food.Fiber, "gap filled from synthesis")
	assert.Equal(t, "protein", food.FoodGroup)
	assert.True(t, food.MakePublic, "AI-originated foods default to public")
	assert.Len(t, res.LogsCreated, 1)
}

func TestParseFoodInputSynthesisFailureDegradesToDefaults(t *testing.T) {
	store := newMemStore()

	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "mystery stew", "metadata": {"calories": 300}}]`),
		gatewayDown(),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "mystery stew", false)

	require.True(t, res.Success, "synthesis failure is not fatal")
	require.Len(t, store.foods, 1)
	food := store.foods[0]
	assert.Equal(t, 300.0, food.Calories)
	assert.Equal(t, 100.0, food.ServingSize)
	assert.Equal(t, "g", food.Unit)
	assert.Equal(t, "other", food.FoodGroup)
}

func TestParseFoodInputMealMatchFlattensIntoNewMeal(t *testing.T) {
	store := newMemStore()
	eggs := store.addFood(models.Food{FoodName: "eggs", Unit: "item"})
	toast := store.addFood(models.Food{FoodName: "toast", Unit: "g"})
	store.addMeal(1, "My Breakfast",
		models.MealFood{FoodID: eggs.ID, Servings: 3},
		models.MealFood{FoodID: toast.ID, Servings: 2},
	)

	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "My Breakfast", "metadata": {}}]`),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "My Breakfast", true)

	require.True(t, res.Success)
	require.Len(t, res.FoodsParsed, 1)
	assert.Equal(t, "meal", res.FoodsParsed[0].Source)
	assert.Empty(t, res.LogsCreated, "meal references log nothing")

	require.NotNil(t, res.MealCreated)
	assert.Equal(t, "My Breakfast (2)", res.MealCreated.MealName, "name deduplicated against the existing meal")
	assert.Equal(t, 2, store.mealFoodCount(res.MealCreated.MealID))

	// Original servings preserved on the copies.
	rows, err := store.ListMealFoods(res.MealCreated.MealID)
	require.NoError(t, err)
	servings := map[uint]float64{}
	for _, r := range rows {
		servings[r.FoodID] = r.Servings
	}
	assert.Equal(t, 3.0, servings[eggs.ID])
	assert.Equal(t, 2.0, servings[toast.ID])
}

func TestParseFoodInputMixedOutcomesMealRowCount(t *testing.T) {
	store := newMemStore()
	store.addFood(models.Food{FoodName: "rice", Unit: "g"})
	store.addFood(models.Food{FoodName: "beans", Unit: "g"})
	oats := store.addFood(models.Food{FoodName: "oats", Unit: "g"})
	store.addMeal(1, "overnight oats", models.MealFood{FoodID: oats.ID, Servings: 1.5})

	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "rice", "metadata": {}}, {"name": "beans", "metadata": {}}, {"name": "overnight oats", "metadata": {}}]`),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "rice, beans and overnight oats", true)

	require.True(t, res.Success)
	assert.Len(t, res.LogsCreated, 2, "only food outcomes produce logs")
	require.NotNil(t, res.MealCreated)
	// N food outcomes + sum of referenced meals' rows.
	assert.Equal(t, 3, store.mealFoodCount(res.MealCreated.MealID))
}

func TestParseFoodInputEmptyCandidateList(t *testing.T) {
	for name, response := range map[string]PromptResult{
		"gateway failure": gatewayDown(),
		"malformed JSON":  completion(`this is not json`),
		"non-array":       completion(`{"name": "banana"}`),
	} {
		t.Run(name, func(t *testing.T) {
			store := newMemStore()
			gw := &scriptedGateway{responses: []PromptResult{response}}

			res := newParser(store, gw).ParseFoodInput(1, "banana", false)

			assert.False(t, res.Success)
			assert.Len(t, res.Errors, 1)
			assert.Empty(t, res.LogsCreated)
			assert.Empty(t, res.FoodsParsed)
			assert.Empty(t, store.foods)
			assert.Empty(t, store.logs)
		})
	}
}

func TestParseFoodInputStripsMarkdownFences(t *testing.T) {
	store := newMemStore()
	store.addFood(models.Food{FoodName: "banana", Unit: "g"})

	gw := &scriptedGateway{responses: []PromptResult{
		completion("```json\n[{\"name\": \"banana\", \"metadata\": {}}]\n```"),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "banana", false)

	require.True(t, res.Success)
	assert.Len(t, res.LogsCreated, 1)
}

func TestParseFoodInputLaterCandidateSeesEarlierCreation(t *testing.T) {
	store := newMemStore()

	// Two identical unknown candidates in one run: the first creates the
	// food, the second must find and reuse it (one synthesis call only).
	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "rice", "metadata": {}}, {"name": "rice", "metadata": {}}]`),
		completion(`{"calories": 130, "protein": 2.7, "unit": "g"}`),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "rice and more rice", false)

	require.True(t, res.Success)
	assert.Len(t, store.foods, 1, "second candidate reuses the row created by the first")
	assert.Len(t, res.LogsCreated, 2)
	assert.Equal(t, "food_new", res.FoodsParsed[0].Source)
	assert.Equal(t, "food_exact", res.FoodsParsed[1].Source)
	assert.Len(t, gw.prompts, 2, "no second synthesis call")
}

func TestParseFoodInputPerCandidateErrorDoesNotAbortSiblings(t *testing.T) {
	store := newMemStore()
	store.addFood(models.Food{FoodName: "toast", Unit: "g"})
	store.lookupErr["bad food"] = fmt.Errorf("connection reset")

	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "bad food", "metadata": {}}, {"name": "toast", "metadata": {}}]`),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "bad food and toast", false)

	assert.False(t, res.Success)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "bad food")
	require.Len(t, res.FoodsParsed, 2)
	assert.NotEmpty(t, res.FoodsParsed[0].Error)
	assert.Equal(t, "food_exact", res.FoodsParsed[1].Source)
	assert.Len(t, res.LogsCreated, 1, "healthy sibling still logged")
}

func TestParseFoodInputServingsHintUsedForLogOnly(t *testing.T) {
	store := newMemStore()
	store.addFood(models.Food{FoodName: "eggs", Unit: "item", ServingSize: 1})

	gw := &scriptedGateway{responses: []PromptResult{
		completion(`[{"name": "eggs", "metadata": {"servings": 3}}]`),
	}}

	res := newParser(store, gw).ParseFoodInput(1, "3 eggs", false)

	require.True(t, res.Success)
	require.Len(t, res.LogsCreated, 1)
	assert.Equal(t, 3.0, res.LogsCreated[0].Servings)
	assert.Len(t, store.foods, 1, "servings is not food metadata, no variant created")
}

func TestMetadataMatchesBrandRules(t *testing.T) {
	svc := newParser(newMemStore(), &scriptedGateway{})

	unbranded := &models.Food{FoodName: "greek yogurt", Brand: ""}
	branded := &models.Food{FoodName: "greek yogurt", Brand: "Chobani"}

	// Lone brand hint against an unbranded row reuses the row.
	assert.True(t, svc.metadataMatches(unbranded, map[string]interface{}{"brand": "Chobani"}))

	// With any second key, the unbranded row no longer matches.
	assert.False(t, svc.metadataMatches(unbranded, map[string]interface{}{"brand": "Chobani", "unit": "g"}))

	assert.True(t, svc.metadataMatches(branded, map[string]interface{}{"brand": "Chobani"}))
	assert.False(t, svc.metadataMatches(branded, map[string]interface{}{"brand": "Fage"}))
}

func TestMetadataMatchesTolerances(t *testing.T) {
	svc := newParser(newMemStore(), &scriptedGateway{})
	food := &models.Food{Calories: 165, Protein: 31, ServingSize: 100, Unit: "g"}

	assert.True(t, svc.metadataMatches(food, map[string]interface{}{}))
	assert.True(t, svc.metadataMatches(food, map[string]interface{}{"calories": 170.0}))
	assert.False(t, svc.metadataMatches(food, map[string]interface{}{"calories": 200.0}))
	assert.True(t, svc.metadataMatches(food, map[string]interface{}{"protein": 32.5}))
	assert.False(t, svc.metadataMatches(food, map[string]interface{}{"protein": 40.0}))
	assert.True(t, svc.metadataMatches(food, map[string]interface{}{"serving_size": 100.05}))
	assert.False(t, svc.metadataMatches(food, map[string]interface{}{"serving_size": 150.0}))
	assert.False(t, svc.metadataMatches(food, map[string]interface{}{"unit": "ml"}))
}

func TestCreateNewFoodNameCollisionSuffix(t *testing.T) {
	store := newMemStore()
	store.addFood(models.Food{FoodName: "tofu"})
	store.addFood(models.Food{FoodName: "tofu (1)"})
	store.addFood(models.Food{FoodName: "tofu (2)"})

	gw := &scriptedGateway{responses: []PromptResult{gatewayDown()}}
	svc := newParser(store, gw)

	food, err := svc.createNewFood(1, "tofu", map[string]interface{}{})
	require.NoError(t, err)
	assert.Equal(t, "tofu (3)", food.FoodName)
}

func TestGenerateMealNameTruncatesLongInput(t *testing.T) {
	store := newMemStore()
	svc := newParser(store, &scriptedGateway{})

	long := strings.Repeat("chicken and rice with extra sauce ", 5)
	name, err := svc.generateMealName(1, long)
	require.NoError(t, err)
	assert.LessOrEqual(t, len([]rune(name)), 50)
}
