package recipe

import "strings"

const defaultShoppingUnit = "piece"

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func nameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[normalize(n)] = struct{}{}
	}
	return set
}

// MissingFrom returns the ingredients that are not in the pantry, compared
// case-insensitively. Input order and casing are preserved; repeats are dropped.
func MissingFrom(ingredients, pantryNames []string) []string {
	have := nameSet(pantryNames)
	seen := make(map[string]struct{}, len(ingredients))
	missing := make([]string, 0)

	for _, ing := range ingredients {
		key := normalize(ing)
		if key == "" {
			continue
		}
		if _, ok := have[key]; ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		missing = append(missing, ing)
	}

	return missing
}

// DedupeStrings drops blank and case-insensitive duplicate entries, keeping the first spelling
func DedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := normalize(v)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, strings.TrimSpace(v))
	}
	return out
}

// DedupeShoppingList merges entries with the same item name, keeping the first one
func DedupeShoppingList(entries []ShoppingListEntry) []ShoppingListEntry {
	seen := make(map[string]struct{}, len(entries))
	out := make([]ShoppingListEntry, 0, len(entries))
	for _, e := range entries {
		key := normalize(e.Item)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Reconcile enforces the pantry contract on a suggestion: ingredientsUsed may
// only name pantry items, everything else moves to missingIngredients, and
// every missing ingredient appears on the shopping list.
func (s *Suggestion) Reconcile(pantryNames []string) {
	have := nameSet(pantryNames)

	for i := range s.Recipes {
		r := &s.Recipes[i]

		used := make([]string, 0, len(r.IngredientsUsed))
		missing := append([]string{}, r.MissingIngredients...)
		for _, ing := range r.IngredientsUsed {
			if _, ok := have[normalize(ing)]; ok {
				used = append(used, ing)
			} else {
				missing = append(missing, ing)
			}
		}

		r.IngredientsUsed = DedupeStrings(used)
		r.MissingIngredients = MissingFrom(DedupeStrings(missing), pantryNames)
	}

	s.ShoppingList = DedupeShoppingList(s.ShoppingList)
	listed := make(map[string]struct{}, len(s.ShoppingList))
	for _, e := range s.ShoppingList {
		listed[normalize(e.Item)] = struct{}{}
	}
	for _, r := range s.Recipes {
		for _, m := range r.MissingIngredients {
			key := normalize(m)
			if _, ok := listed[key]; ok {
				continue
			}
			listed[key] = struct{}{}
			s.ShoppingList = append(s.ShoppingList, ShoppingListEntry{Item: m, Quantity: 1, Unit: defaultShoppingUnit})
		}
	}
}
