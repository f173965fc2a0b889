package services

import (
	"encoding/json"
	"fmt"
)

const foodParsingPrompt = `You are a food parsing API. Parse this food description into a structured JSON list.

Input: "%s"

CRITICAL INSTRUCTIONS:
1. Return ONLY a JSON array. No explanations, no markdown code blocks, just raw JSON.
2. Extract each food/meal mentioned
3. For metadata, ONLY include: brand name if mentioned
4. Do NOT include: quantity, servings, protein_per_item, or any nutritional data in metadata
5. Nutritional data will be looked up separately

Required JSON format:
[
  {"name": "food name", "metadata": {"brand": "Brand Name"}}
]

Examples:
Input: "3 brown eggs from Trader Joe's"
Output: [{"name": "brown eggs", "metadata": {"brand": "Trader Joes"}}]

Input: "chicken breast and rice"
Output: [{"name": "chicken breast", "metadata": {}}, {"name": "rice", "metadata": {}}]

Input: "My Breakfast"
Output: [{"name": "My Breakfast", "metadata": {}}]

Return ONLY the JSON array, nothing else.`

const metadataGenerationPrompt = `You are a nutritional data API. Generate complete nutritional information for: "%s"

%s

CRITICAL INSTRUCTIONS:
1. Return ONLY a valid JSON object. No explanations, no markdown, just raw JSON.
2. ALL fields must be included with realistic nutritional values based on USDA nutritional database
3. If a field already has a value in "Existing metadata", use that exact value - DO NOT override it
4. For missing fields, provide accurate values based on USDA nutritional data for similar foods
5. The brand field should contain the actual brand name if mentioned (e.g., "Trader Joes", "Kodiak", "Chobani")
6. Never leave fields null or empty - use 0 if truly unknown
7. Use appropriate serving sizes (e.g., 100g for most foods, 1 cup for liquids, 1 item for whole items)
8. Be realistic with micronutrients - don't make up excessive vitamin/mineral values

Required JSON structure (include ALL these fields):
{
  "serving_size": 100,
  "unit": "g",
  "calories": 165,
  "protein": 31,
  "fat": 3.6,
  "carbohydrates": 0,
  "fiber": 0,
  "sodium": 74,
  "sugar": 0,
  "saturated_fat": 1,
  "trans_fat": 0,
  "calcium": 15,
  "iron": 0.9,
  "magnesium": 29,
  "cholesterol": 85,
  "vitamin_a": 18,
  "vitamin_c": 0,
  "vitamin_d": 0.1,
  "caffeine": 0,
  "food_group": "protein",
  "brand": "",
  "cost": null
}

Food groups: "protein", "grain", "vegetable", "fruit", "dairy", "other"
Units: "g", "ml", "oz", "cup", "tbsp", "tsp", "item"

Examples of realistic nutritional values:
- Chicken breast (100g): ~165 calories, 31g protein, 3.6g fat, 0g carbs
- White rice (100g): ~130 calories, 2.7g protein, 0.3g fat, 28g carbs
- Banana (100g): ~89 calories, 1.1g protein, 0.3g fat, 23g carbs
- Whole milk (100ml): ~61 calories, 3.2g protein, 3.3g fat, 4.7g carbs

Return ONLY the JSON object, nothing else.`

func buildFoodParsingPrompt(inputText string) string {
	return fmt.Sprintf(foodParsingPrompt, inputText)
}

func buildMetadataPrompt(foodName string, existing map[string]interface{}) string {
	existingStr := ""
	if len(existing) > 0 {
		if b, err := json.MarshalIndent(existing, "", "  "); err == nil {
			existingStr = "Existing metadata (keep these values):\n" + string(b)
		}
	}
	return fmt.Sprintf(metadataGenerationPrompt, foodName, existingStr)
}
