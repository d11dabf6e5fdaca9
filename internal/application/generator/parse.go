package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pantrychef/backend/internal/domain/recipe"
)

var errNoJSON = errors.New("no JSON object found in model output")

// ExtractJSON pulls the outermost JSON object out of model output. It strips
// markdown fences and takes the first complete object. Failing that it cuts
// from the first "{" to the last "}", and closes unterminated strings,
// arrays and objects when the output was truncated.
func ExtractJSON(text string) (string, bool) {
	text = stripFences(strings.TrimSpace(text))

	start := strings.Index(text, "{")
	if start < 0 {
		return "", false
	}

	var first json.RawMessage
	if err := json.NewDecoder(strings.NewReader(text[start:])).Decode(&first); err == nil {
		return string(first), true
	}

	if end := strings.LastIndex(text, "}"); end > start {
		candidate := text[start : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}

	repaired := repairJSON(text[start:])
	if json.Valid([]byte(repaired)) {
		return repaired, true
	}

	return "", false
}

func stripFences(text string) string {
	if idx := strings.Index(text, "```json"); idx >= 0 {
		text = text[idx+len("```json"):]
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
		return strings.TrimSpace(text)
	}
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if end := strings.Index(text, "```"); end >= 0 {
			text = text[:end]
		}
	}
	return strings.TrimSpace(text)
}

// repairJSON closes whatever a truncated document left open, in stack order
func repairJSON(s string) string {
	var stack []byte
	inString, escaped := false, false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	var b strings.Builder
	b.WriteString(s)
	if inString {
		if escaped {
			b.WriteString("\\")
		}
		b.WriteString(`"`)
	}

	out := strings.TrimRight(b.String(), " \t\r\n")
	out = strings.TrimRight(out, ",")
	if strings.HasSuffix(out, ":") {
		out += "null"
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == '{' {
			out += "}"
		} else {
			out += "]"
		}
	}

	return out
}

// flexString accepts strings, numbers and null
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexString(n.String())
		return nil
	}
	if string(data) == "null" {
		*f = ""
		return nil
	}
	return fmt.Errorf("expected string, got %s", data)
}

// flexInt accepts numbers and strings with a leading number ("420 kcal")
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexInt(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexInt(leadingNumber(s))
		return nil
	}
	*f = 0
	return nil
}

// flexFloat accepts numbers, numeric strings and simple fractions ("1/2")
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexFloat(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexFloat(parseAmount(s))
		return nil
	}
	*f = 0
	return nil
}

// flexStrings accepts a single string, or a list of strings or of objects carrying a name-like field
type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if s := strings.TrimSpace(single); s != "" {
			*f = flexStrings{s}
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		*f = nil
		return nil
	}

	out := make([]string, 0, len(raw))
	for _, elem := range raw {
		var s flexString
		if err := json.Unmarshal(elem, &s); err == nil {
			if s != "" {
				out = append(out, string(s))
			}
			continue
		}
		var obj map[string]interface{}
		if err := json.Unmarshal(elem, &obj); err == nil {
			for _, key := range []string{"name", "item", "ingredient", "instruction", "text", "description", "step"} {
				if v, ok := obj[key].(string); ok && strings.TrimSpace(v) != "" {
					out = append(out, strings.TrimSpace(v))
					break
				}
			}
		}
	}
	*f = out
	return nil
}

type wireNutrition struct {
	Calories flexInt    `json:"calories"`
	Protein  flexString `json:"protein"`
	Carbs    flexString `json:"carbs"`
	Fat      flexString `json:"fat"`
}

// UnmarshalJSON reads a nutrition object. A bare value such as "420 kcal"
// only carries calories; anything else leaves the defaults in place.
func (w *wireNutrition) UnmarshalJSON(data []byte) error {
	type plain wireNutrition
	var obj plain
	if err := json.Unmarshal(data, &obj); err == nil {
		*w = wireNutrition(obj)
		return nil
	}

	var calories flexInt
	if err := json.Unmarshal(data, &calories); err == nil {
		*w = wireNutrition{Calories: calories}
	}
	return nil
}

type wireRecipe struct {
	Title              flexString     `json:"title"`
	Name               flexString     `json:"name"`
	Description        flexString     `json:"description"`
	CookTime           flexString     `json:"cookTime"`
	CookTimeSnake      flexString     `json:"cook_time"`
	Servings           flexInt        `json:"servings"`
	IngredientsUsed    flexStrings    `json:"ingredientsUsed"`
	MissingIngredients flexStrings    `json:"missingIngredients"`
	MissingSnake       flexStrings    `json:"missing_ingredients"`
	Nutrition          *wireNutrition `json:"nutrition"`
	Steps              flexStrings    `json:"steps"`
	Instructions       flexStrings    `json:"instructions"`
	Technique          flexString     `json:"technique"`
	WinePairing        flexString     `json:"winePairing"`
	WinePairingTypo    flexString     `json:"winePariring"`
}

type wireShoppingEntry struct {
	Item     string
	Quantity float64
	Unit     string
}

func (w *wireShoppingEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		w.Item = strings.TrimSpace(name)
		return nil
	}

	var obj struct {
		Item     flexString `json:"item"`
		Name     flexString `json:"name"`
		Quantity flexFloat  `json:"quantity"`
		Unit     flexString `json:"unit"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil
	}
	w.Item = string(firstNonEmpty(obj.Item, obj.Name))
	w.Quantity = float64(obj.Quantity)
	w.Unit = string(obj.Unit)
	return nil
}

// wireRecipes accepts a list of recipes or a single recipe object. Elements
// that are not objects are dropped.
type wireRecipes []wireRecipe

func (w *wireRecipes) UnmarshalJSON(data []byte) error {
	*w = nil

	var single wireRecipe
	if isJSONObject(data) {
		if err := json.Unmarshal(data, &single); err == nil {
			*w = wireRecipes{single}
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}
	for _, elem := range raw {
		if !isJSONObject(elem) {
			continue
		}
		var r wireRecipe
		if err := json.Unmarshal(elem, &r); err == nil {
			*w = append(*w, r)
		}
	}
	return nil
}

// wireShoppingList accepts a list of entries, or a single string or object
type wireShoppingList []wireShoppingEntry

func (w *wireShoppingList) UnmarshalJSON(data []byte) error {
	*w = nil

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		var single wireShoppingEntry
		if err := json.Unmarshal(data, &single); err == nil && single.Item != "" {
			*w = wireShoppingList{single}
		}
		return nil
	}

	for _, elem := range raw {
		var e wireShoppingEntry
		if err := json.Unmarshal(elem, &e); err == nil {
			*w = append(*w, e)
		}
	}
	return nil
}

func isJSONObject(data []byte) bool {
	trimmed := strings.TrimSpace(string(data))
	return strings.HasPrefix(trimmed, "{")
}

type wireEnvelope struct {
	Recipes      wireRecipes      `json:"recipes"`
	Meals        wireRecipes      `json:"meals"`
	ShoppingList wireShoppingList `json:"shoppingList"`
	Title        flexString       `json:"title"`
}

// Defaults applied to fields the model left out
const (
	defaultTitle       = "Untitled Recipe"
	defaultDescription = "Delicious meal using your pantry items"
	defaultCookTime    = "30 minutes"
	defaultUnit        = "piece"
)

var defaultSteps = []string{"Prepare ingredients", "Cook according to recipe", "Serve and enjoy"}

var defaultNutrition = recipe.Nutrition{Calories: 300, Protein: "15g", Carbs: "35g", Fat: "10g"}

// DecodeSuggestion parses model output into a suggestion. It accepts the
// {recipes} and {meals} envelopes as well as a bare recipe object.
func DecodeSuggestion(text string, servings int) (recipe.Suggestion, error) {
	doc, ok := ExtractJSON(text)
	if !ok {
		return recipe.Suggestion{}, errNoJSON
	}

	var env wireEnvelope
	if err := json.Unmarshal([]byte(doc), &env); err != nil {
		return recipe.Suggestion{}, fmt.Errorf("failed to decode suggestion: %w", err)
	}

	wires := env.Recipes
	if len(wires) == 0 {
		wires = env.Meals
	}
	if len(wires) == 0 && env.Title != "" {
		var bare wireRecipe
		if err := json.Unmarshal([]byte(doc), &bare); err != nil {
			return recipe.Suggestion{}, fmt.Errorf("failed to decode recipe: %w", err)
		}
		wires = []wireRecipe{bare}
	}
	if len(wires) == 0 {
		return recipe.Suggestion{}, recipe.ErrNoRecipes
	}

	s := recipe.Suggestion{
		Recipes:      make([]recipe.Recipe, 0, len(wires)),
		ShoppingList: make([]recipe.ShoppingListEntry, 0, len(env.ShoppingList)),
	}
	for _, w := range wires {
		s.Recipes = append(s.Recipes, w.toRecipe(servings))
	}
	for _, e := range env.ShoppingList {
		if e.Item == "" {
			continue
		}
		if e.Quantity <= 0 {
			e.Quantity = 1
		}
		if e.Unit == "" {
			e.Unit = defaultUnit
		}
		s.ShoppingList = append(s.ShoppingList, recipe.ShoppingListEntry{Item: e.Item, Quantity: e.Quantity, Unit: e.Unit})
	}

	return s, nil
}

func (w wireRecipe) toRecipe(servings int) recipe.Recipe {
	r := recipe.Recipe{
		Title:              string(firstNonEmpty(w.Title, w.Name, defaultTitle)),
		Description:        string(firstNonEmpty(w.Description, defaultDescription)),
		CookTime:           string(firstNonEmpty(w.CookTime, w.CookTimeSnake, defaultCookTime)),
		Servings:           int(w.Servings),
		IngredientsUsed:    nonNil(w.IngredientsUsed),
		MissingIngredients: nonNil(append(append([]string{}, w.MissingIngredients...), w.MissingSnake...)),
		Steps:              nonNil(w.Steps),
		Technique:          string(w.Technique),
		WinePairing:        string(firstNonEmpty(w.WinePairing, w.WinePairingTypo)),
		Nutrition:          defaultNutrition,
	}

	if r.Servings <= 0 {
		r.Servings = servings
	}
	if len(r.Steps) == 0 {
		r.Steps = nonNil(w.Instructions)
	}
	if len(r.Steps) == 0 {
		r.Steps = append([]string{}, defaultSteps...)
	}

	if n := w.Nutrition; n != nil {
		if n.Calories > 0 {
			r.Nutrition.Calories = int(n.Calories)
		}
		r.Nutrition.Protein = string(firstNonEmpty(n.Protein, flexString(defaultNutrition.Protein)))
		r.Nutrition.Carbs = string(firstNonEmpty(n.Carbs, flexString(defaultNutrition.Carbs)))
		r.Nutrition.Fat = string(firstNonEmpty(n.Fat, flexString(defaultNutrition.Fat)))
	}

	return r
}

func firstNonEmpty(values ...flexString) flexString {
	for _, v := range values {
		if strings.TrimSpace(string(v)) != "" {
			return v
		}
	}
	return ""
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func leadingNumber(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return n
}

func parseAmount(s string) float64 {
	s = strings.TrimSpace(s)
	if num, den, ok := strings.Cut(s, "/"); ok {
		n, errN := strconv.ParseFloat(strings.TrimSpace(num), 64)
		d, errD := strconv.ParseFloat(leadingDigits(den), 64)
		if errN == nil && errD == nil && d != 0 {
			return n / d
		}
		return 0
	}
	return leadingNumber(s)
}

func leadingDigits(s string) string {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
