package catalog

const (
	secWaking    = "Upon Waking"
	secMorning   = "Morning"
	secLunch     = "Lunchtime"
	secAfternoon = "Mid-Afternoon"
	secDinner    = "Dinnertime"
	secEvening   = "Evening"
)

const (
	fruitMeal = "Blended melon, fresh watermelon juice, blended papaya, or blended ripe pear, or fresh-squeezed orange juice (as many servings and as often as desired)"
	greensMix = "Kale Salad/Cauliflower and Greens Bowl/Tomato, Cucumber, and Herb Salad/Leafy Green Nori Rolls/Spinach Soup with optional cucumber noodles"
	herbalTea = "Herbal tea: hibiscus, lemon balm, or chaga"
	plainTea  = "Hibiscus, lemon balm, or chaga tea"
)

var programOrder = []string{"original", "simplified", "advanced"}

var programs = map[string]Program{
	"original": {
		Key:   "original",
		Label: "Original 369",
		Phases: []Phase{
			{Key: "1-3", Sections: []Section{
				{secWaking, []string{"16 ounces lemon or lime water"}},
				{secMorning, []string{
					"Wait 15–30 minutes",
					"16 ounces celery juice",
					"Wait another 15–30 minutes",
					"Breakfast & mid-morning snack (within guidelines) — Day 2–3 include 1–2 apples/applesauce",
				}},
				{secLunch, []string{"Meal of your choice (within guidelines) + steamed zucchini/summer squash"}},
				{secAfternoon, []string{"1–2 apples (or applesauce) with 1–2 dates"}},
				{secDinner, []string{"Meal of your choice (within guidelines)"}},
				{secEvening, []string{
					"Apple or applesauce (optional)",
					"16 ounces lemon or lime water",
					herbalTea,
				}},
			}},
			{Key: "4-6", Sections: []Section{
				{secWaking, []string{"16 ounces lemon or lime water"}},
				{secMorning, []string{
					"Wait 15–30 minutes",
					"16 ounces celery juice",
					"Wait another 15–30 minutes",
					"Liver Rescue Smoothie",
				}},
				{secLunch, []string{"Steamed asparagus with Liver Rescue Salad"}},
				{secAfternoon, []string{"At least 1–2 apples/applesauce + 1–3 dates + celery sticks"}},
				{secDinner, []string{"Steamed asparagus with Liver Rescue Salad. Day 5: brussels sprouts instead of asparagus. Day 6: both + liver rescue salad"}},
				{secEvening, []string{"Apple/applesauce (if desired)", "16 ounces lemon/lime water", plainTea}},
			}},
			{Key: "7-8", Sections: []Section{
				{secWaking, []string{"16 ounces lemon or lime water"}},
				{secMorning, []string{
					"Wait 15–30 minutes",
					"16 ounces celery juice",
					"Wait another 15–30 minutes",
					"Liver Rescue Smoothie",
				}},
				{secLunch, []string{"Spinach Soup over cucumber noodles"}},
				{secAfternoon, []string{
					"Wait at least 60 mins",
					"16 ounces celery juice",
					"Wait at least 15–30 minutes then",
					"1–2 apples/applesauce + cucumber slices + celery sticks",
				}},
				{secDinner, []string{"Steamed squash, sweet potatoes, yams, or potatoes with steamed asparagus and/or brussels sprouts + optional liver rescue salad"}},
				{secEvening, []string{"Optional apple/applesauce", "16 ounces lemon/lime water", plainTea}},
			}},
			{Key: "9", Sections: []Section{
				{secWaking, []string{"16 ounces lemon or lime water"}},
				{secMorning, []string{
					"Wait 15–30 minutes",
					"16 ounces celery juice",
					"Wait another 15–30 minutes",
					"16–20 ounces cucumber-apple juice",
					"16–20 ounces cucumber-apple juice",
				}},
				{secLunch, []string{fruitMeal}},
				{secAfternoon, []string{
					"Wait at least 15 mins",
					fruitMeal,
					"Wait at least 15–30 minutes then",
					"Water",
					fruitMeal,
				}},
				{secDinner, []string{fruitMeal}},
				{secEvening, []string{"16 ounces lemon or lime water", plainTea}},
			}},
		},
	},
	"simplified": {
		Key:   "simplified",
		Label: "Simplified 369",
		Phases: []Phase{
			{Key: "1-3", Sections: []Section{
				{secWaking, []string{"16 ounces lemon/lime water"}},
				{secMorning, []string{"Wait 15–30 mins", "16 ounces celery juice", "Wait another 15–30 mins", "Breakfast of your choice (within guidelines) and apples if desired"}},
				{secLunch, []string{"Meal of your choice (within guidelines)"}},
				{secAfternoon, []string{"Optional apple + 1–4 dates + cucumber slices + celery sticks"}},
				{secDinner, []string{"Meal of your choice (within guidelines)"}},
				{secEvening, []string{"Apple/applesauce", "16 ounces of lemon/lime water", herbalTea}},
			}},
			{Key: "4-6", Sections: []Section{
				{secWaking, []string{"16 ounces lemon/lime water"}},
				{secMorning, []string{"Wait 15–30 mins", "24 ounces celery juice", "Wait another 15–30 mins", "Fruit-based breakfast of your choice (within guidelines) and apples if desired"}},
				{secLunch, []string{"Meal of your choice (within guidelines)"}},
				{secAfternoon, []string{"Optional apple + 1–4 dates + cucumber slices + celery sticks"}},
				{secDinner, []string{"Meal of your choice (within guidelines)"}},
				{secEvening, []string{"Apple/applesauce", "16 ounces of lemon/lime water", herbalTea}},
			}},
			{Key: "7-8", Sections: []Section{
				{secWaking, []string{"16 ounces lemon/lime water"}},
				{secMorning, []string{"Wait 15–30 mins", "32 ounces celery juice", "Wait another 15–30 mins", "Fruit-based breakfast of your choice (within guidelines) and apples if desired"}},
				{secLunch, []string{"Meal of your choice (within guidelines)"}},
				{secAfternoon, []string{"Optional apple + 1–4 dates + cucumber slices + celery sticks"}},
				{secDinner, []string{"Meal of your choice (within guidelines) that incorporates steamed asparagus and/or brussels sprouts"}},
				{secEvening, []string{"Apple/applesauce", "16 ounces of lemon/lime water", herbalTea}},
			}},
			{Key: "9", Sections: []Section{
				{secWaking, []string{"16 ounces lemon or lime water"}},
				{secMorning, []string{
					"Wait 15–30 minutes",
					"16 ounces celery juice",
					"Wait another 15–30 minutes",
					fruitMeal,
				}},
				{secLunch, []string{"Spinach soup"}},
				{secAfternoon, []string{
					"Wait at least 60 mins",
					"16 ounces celery juice",
					"Wait at least 15–30 minutes then",
					fruitMeal,
				}},
				{secDinner, []string{"Asparagus Soup or Zucchini Basil Soup"}},
				{secEvening, []string{"16 ounces of lemon/lime water", herbalTea}},
			}},
		},
	},
	"advanced": {
		Key:   "advanced",
		Label: "Advanced 369",
		Phases: []Phase{
			{Key: "1-3", Sections: []Section{
				{secWaking, []string{"32 ounces lemon/lime water"}},
				{secMorning, []string{"Wait 15–30 mins", "24 or 32 ounces celery juice", "Wait another 15–30 mins", "Heavy Metal Detox Smoothie", "Apples if desired"}},
				{secLunch, []string{"Liver Rescue Smoothie or Spinach soup (with optional cucumber noodles)"}},
				{secAfternoon, []string{"Apples"}},
				{secDinner, []string{greensMix}},
				{secEvening, []string{"Apple/applesauce", "16 ounces of lemon/lime water", herbalTea}},
			}},
			{Key: "4-6", Sections: []Section{
				{secWaking, []string{"32 ounces lemon/lime water"}},
				{secMorning, []string{"Wait 15–30 mins", "32 ounces celery juice", "Wait another 15–30 mins", "Heavy Metal Detox Smoothie", "Apples if desired"}},
				{secLunch, []string{"Liver Rescue Smoothie or Spinach soup (with optional cucumber noodles)"}},
				{secAfternoon, []string{"Apples if hungry"}},
				{secDinner, []string{greensMix}},
				{secEvening, []string{"Apple/applesauce", "16 ounces of lemon/lime water", herbalTea}},
			}},
			{Key: "7-8", Sections: []Section{
				{secWaking, []string{"32 ounces lemon/lime water"}},
				{secMorning, []string{"Wait 15–30 mins", "32 ounces celery juice", "Wait another 15–30 mins", "Heavy Metal Detox Smoothie", "Apples if desired"}},
				{secLunch, []string{"Liver Rescue Smoothie or Spinach soup (with optional cucumber noodles)"}},
				{secAfternoon, []string{"Wait at least 60 mins", "32 ounces celery juice", "Wait at least 15–30 minutes then", "Apples if hungry"}},
				{secDinner, []string{greensMix}},
				{secEvening, []string{"Apple/applesauce", "16 ounces of lemon/lime water", herbalTea}},
			}},
			{Key: "9", Sections: []Section{
				{secWaking, []string{"32 ounces lemon or lime water"}},
				{secMorning, []string{
					"32 ounces celery juice",
					"Wait another 15–30 minutes",
					"20-ounce cucumber-apple juice",
					"20-ounce cucumber-apple juice",
				}},
				{secLunch, []string{fruitMeal}},
				{secAfternoon, []string{
					"Wait at least 15 mins",
					fruitMeal,
					"Wait at least 15–30 minutes then",
					"Water",
					fruitMeal,
				}},
				{secDinner, []string{"32 ounces celery juice", "Wait 15–30 mins", fruitMeal}},
				{secEvening, []string{"16 ounces lemon or lime water", plainTea}},
			}},
		},
	},
}
