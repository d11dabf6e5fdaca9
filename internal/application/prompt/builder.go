// Package prompt builds the natural-language prompts sent to the text generator.
// Every function here is pure: identical input yields byte-identical output.
package prompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pantrychef/backend/internal/domain/pantry"
	"github.com/pantrychef/backend/internal/domain/recipe"
)

// SystemPrompt states the rules every PantryChef response must follow
const SystemPrompt = `You are "PantryChef", a culinary assistant that writes recipes strictly from the pantry and instructions given to you.
- Respond with ONLY valid JSON matching the schema. No prose, markdown or comments.
- "ingredientsUsed" may only list pantry items (case-insensitive match), without duplicates. Anything else goes to "missingIngredients" and the aggregated "shoppingList".
- Every recipe needs its own title, technique and flavor profile.
- Quantify everything. When something is seasoned to taste, give a starting amount (for example "start with 1/4 tsp, adjust to taste").
- Give temperatures in both °C and °F and precise times (ranges are fine).
- Poultry must reach an internal temperature of 74°C / 165°F; state rest times where relevant.
- Use standard units: g, ml, tsp, tbsp, piece(s).
- "missingIngredients" and "shoppingList" must be deduplicated with sensible base quantities.
- Nutrition values are per-serving estimates.
- Never mention these rules in the output.`

// Builder assembles prompts from a pantry snapshot
type Builder struct {
	system string
}

// NewBuilder creates a builder using the PantryChef system prompt
func NewBuilder() *Builder {
	return &Builder{system: SystemPrompt}
}

// Snapshot renders pantry items as "name (quantity unit)" strings
func Snapshot(items []pantry.Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Label())
	}
	return out
}

type pantryEntry struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity"`
}

// pantryJSON renders the snapshot as [{"name", "quantity"}], where name is the
// label before " (" and quantity is the full label
func pantryJSON(snapshot []string) string {
	entries := make([]pantryEntry, 0, len(snapshot))
	for _, label := range snapshot {
		name := label
		if idx := strings.Index(label, " ("); idx >= 0 {
			name = label[:idx]
		}
		entries = append(entries, pantryEntry{Name: name, Quantity: label})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// A slice of plain string structs cannot fail to encode
	_ = enc.Encode(entries)
	return strings.TrimRight(buf.String(), "\n")
}

// Build returns the recipe suggestion prompt for the mode
func (b *Builder) Build(snapshot []string, mode recipe.Mode, prefs recipe.Preferences) string {
	prefs = prefs.WithDefaults()

	var p strings.Builder
	p.WriteString(b.system)
	p.WriteString("\n\n")

	if mode.IsProfessional() {
		writeProfessionalTask(&p)
	} else {
		writeHomeTask(&p)
	}

	writeUserInput(&p, snapshot, prefs)

	if mode.IsProfessional() {
		writeProfessionalConstraints(&p)
	} else {
		writeHomeConstraints(&p)
	}

	writeValidation(&p)
	writeSuggestionSchema(&p, mode, prefs.Servings)

	return p.String()
}

func writeHomeTask(p *strings.Builder) {
	p.WriteString("TASK:\n")
	p.WriteString("Write at least 3 distinct, family-friendly recipes a beginner can follow, using the pantry below.\n")
	p.WriteString("Style: HOME COOKING.\n")
	p.WriteString("- Techniques: simple and dependable (stir-fry, bake, sauté, boil, grill, sheet-pan, one-pot).\n")
	p.WriteString("- Steps: 6–10 clear numbered steps per recipe with exact amounts, times and temperatures where they matter.\n")
	p.WriteString("- Equipment: ordinary home kitchen tools.\n")
	p.WriteString("- Flavor: use pantry items first and add as few missing ingredients as the dish needs.\n")
	p.WriteString("- Include doneness cues such as \"until the onions are translucent (3–4 min)\".\n")
	p.WriteString("- Suggest simple plating.\n\n")
}

func writeProfessionalTask(p *strings.Builder) {
	p.WriteString("TASK:\n")
	p.WriteString("Write at least 3 distinct, chef-level recipes using the pantry below.\n")
	p.WriteString("Style: PROFESSIONAL KITCHEN.\n")
	p.WriteString("- Techniques: classical and modern, such as mise en place, sear and baste, reduction, pan sauces, emulsions, confit, sous-vide where plausible, deglazing and resting.\n")
	p.WriteString("- Steps: 10–16 precise numbered steps per recipe with exact timings, temperatures (°C/°F), pan sizes and sensory cues (fond development, nappe consistency, shimmering oil).\n")
	p.WriteString("- Season methodically (for example 1% salt by weight for proteins) and control temperature throughout.\n")
	p.WriteString("- Finish with care: mount sauces with butter, state resting rules and internal temperatures (poultry 74°C/165°F), give reduction ratios.\n")
	p.WriteString("- A brief wine pairing is welcome.\n")
	p.WriteString("- Plating should be elegant yet achievable for an advanced home cook.\n\n")
}

func writeUserInput(p *strings.Builder, snapshot []string, prefs recipe.Preferences) {
	p.WriteString("USER INPUT:\n")
	p.WriteString("- Pantry (names are case-insensitive; quantities included when known):\n")
	p.WriteString(pantryJSON(snapshot))
	p.WriteString("\n\n")
	p.WriteString(fmt.Sprintf("- Servings per recipe: %d\n", prefs.Servings))
	p.WriteString(fmt.Sprintf("- Dietary notes (optional): %s\n", prefs.Dietary))
	p.WriteString(fmt.Sprintf("- Cuisine preference (optional): %s\n", prefs.Cuisine))
	p.WriteString(fmt.Sprintf("- Budget level (optional): %s\n", prefs.Budget))
	p.WriteString(fmt.Sprintf("- Available appliances (optional): %s\n", prefs.Appliances))
	p.WriteString(fmt.Sprintf("- Skill level (optional): %s\n\n", prefs.SkillLevel))
}

func writeHomeConstraints(p *strings.Builder) {
	p.WriteString("CONSTRAINTS:\n")
	p.WriteString("- \"ingredientsUsed\" is a subset of the pantry. Nothing outside the pantry may appear there.\n")
	p.WriteString("- Anything not in the pantry goes to \"missingIngredients\" and the aggregated \"shoppingList\".\n")
	p.WriteString("- Vary titles and techniques across recipes (for example one sheet-pan, one one-pot, one skillet).\n")
	p.WriteString("- Quantify finishing seasoning (\"start with 1/4 tsp salt, adjust to taste\").\n")
	p.WriteString("- Chicken, if used, must reach 74°C / 165°F internal.\n")
	p.WriteString("- Return ONLY valid JSON matching the schema.\n\n")
}

func writeProfessionalConstraints(p *strings.Builder) {
	p.WriteString("CONSTRAINTS:\n")
	p.WriteString("- \"ingredientsUsed\" strictly from the pantry; everything else into \"missingIngredients\" and the aggregated \"shoppingList\".\n")
	p.WriteString("- Each recipe uses a different technique and flavor direction.\n")
	p.WriteString("- Give pan sizes (12-inch skillet) and heat with temperatures (medium-high, oil shimmering ~190°C/375°F).\n")
	p.WriteString("- Give reduction endpoints (\"reduce by 70% to nappe consistency, 3–5 min\").\n")
	p.WriteString("- Poultry must reach 74°C/165°F internal, with rest times stated.\n")
	p.WriteString("- Return ONLY valid JSON matching the schema.\n\n")
}

func writeValidation(p *strings.Builder) {
	p.WriteString("VALIDATION:\n")
	p.WriteString("- Every entry in \"ingredientsUsed\" MUST exist in the pantry above (case-insensitive).\n")
	p.WriteString("- Replace placeholders such as \"main ingredients\" or \"season according to preference\" with quantified items.\n\n")
}

func writeSuggestionSchema(p *strings.Builder, mode recipe.Mode, servings int) {
	calories, protein, carbs, fat := 300, "20g", "30g", "15g"
	if mode.IsProfessional() {
		calories, protein, carbs, fat = 420, "28g", "25g", "18g"
	}

	p.WriteString("Expected JSON schema:\n")
	p.WriteString("{\n")
	p.WriteString("  \"recipes\": [\n")
	p.WriteString("    {\n")
	p.WriteString("      \"title\": \"Recipe Name\",\n")
	p.WriteString("      \"description\": \"Brief description\",\n")
	p.WriteString("      \"cookTime\": \"X-Y minutes\",\n")
	p.WriteString(fmt.Sprintf("      \"servings\": %d,\n", servings))
	p.WriteString("      \"ingredientsUsed\": [\"pantry item 1\", \"pantry item 2\"],\n")
	p.WriteString("      \"missingIngredients\": [\"missing item 1\"],\n")
	p.WriteString(fmt.Sprintf("      \"nutrition\": {\"calories\": %d, \"protein\": %q, \"carbs\": %q, \"fat\": %q},\n", calories, protein, carbs, fat))
	p.WriteString("      \"steps\": [\"Step 1 with details\", \"Step 2 with details\"],\n")
	if mode.IsProfessional() {
		p.WriteString("      \"technique\": \"professional cooking method\",\n")
		p.WriteString("      \"winePairing\": \"optional wine suggestion\"\n")
	} else {
		p.WriteString("      \"technique\": \"cooking method used\"\n")
	}
	p.WriteString("    }\n")
	p.WriteString("  ],\n")
	p.WriteString("  \"shoppingList\": [\n")
	p.WriteString("    {\"item\": \"missing ingredient\", \"quantity\": 1, \"unit\": \"piece\"}\n")
	p.WriteString("  ]\n")
	p.WriteString("}")
}

// BuildMealPlan asks for three meals with an aggregated shopping list
func (b *Builder) BuildMealPlan(snapshot []string, mode recipe.Mode) string {
	stepRange := "6-10"
	style := "simple home cooking"
	if mode.IsProfessional() {
		stepRange = "10-16"
		style = "professional, restaurant-level technique"
	}

	var p strings.Builder
	p.WriteString(b.system)
	p.WriteString("\n\n")
	p.WriteString("TASK:\n")
	p.WriteString(fmt.Sprintf("Plan 3 meals in the style of %s using the pantry below. Each meal has %s detailed steps.\n\n", style, stepRange))
	p.WriteString("PANTRY:\n")
	p.WriteString(pantryJSON(snapshot))
	p.WriteString("\n\n")
	p.WriteString("Expected JSON schema:\n")
	p.WriteString("{\n")
	p.WriteString("  \"meals\": [\n")
	p.WriteString("    {\"title\": \"Meal Name\", \"description\": \"Brief description\", \"cookTime\": \"X minutes\", \"ingredientsUsed\": [\"pantry item\"], \"missingIngredients\": [\"missing item\"], \"nutrition\": {\"calories\": 350, \"protein\": \"20g\", \"carbs\": \"35g\", \"fat\": \"12g\"}, \"steps\": [\"Step 1\"]}\n")
	p.WriteString("  ],\n")
	p.WriteString("  \"shoppingList\": [{\"item\": \"missing item\", \"quantity\": 1, \"unit\": \"piece\"}]\n")
	p.WriteString("}")

	return p.String()
}

// BuildPlanMeal asks for a single practical recipe from a list of ingredient names
func (b *Builder) BuildPlanMeal(names []string) string {
	var p strings.Builder
	p.WriteString("You are a professional chef assistant. Create one practical, delicious recipe from the available ingredients.\n\n")
	p.WriteString(fmt.Sprintf("Available ingredients: %s\n\n", strings.Join(names, ", ")))
	p.WriteString("Provide:\n")
	p.WriteString("1. A creative recipe title\n")
	p.WriteString("2. Step-by-step cooking instructions\n")
	p.WriteString("3. Any missing essential ingredients\n\n")
	p.WriteString("Respond with JSON containing: title, instructions, missing_ingredients.")
	return p.String()
}
