package service

import (
	"github.com/shopspring/decimal"

	"bistro/internal/model"
)

type catalogueItem struct {
	name, description, price string
}

type catalogueCategory struct {
	name  string
	items []catalogueItem
}

var barAndGrill = []catalogueCategory{
	{"Starters", []catalogueItem{
		{"Buffalo Wings", "Spicy chicken wings with blue cheese dip.", "12.99"},
		{"Loaded Nachos", "Tortilla chips, cheese, jalapeños, guacamole.", "10.99"},
		{"Mozzarella Sticks", "Fried mozzarella, marinara sauce.", "8.99"},
		{"Crispy Calamari", "Fried calamari rings, lemon aioli.", "13.99"},
		{"Jalapeño Poppers", "Stuffed jalapeños, cheddar, ranch dip.", "9.99"},
		{"BBQ Chicken Quesadilla", "Grilled chicken, BBQ sauce, cheese, salsa.", "11.99"},
	}},
	{"Grill", []catalogueItem{
		{"Ribeye Steak", "12oz ribeye, garlic butter, fries.", "32.99"},
		{"BBQ Ribs", "Slow-cooked pork ribs, house BBQ sauce.", "27.99"},
		{"Grilled Salmon", "Atlantic salmon, lemon herb butter.", "24.99"},
		{"Chicken Skewers", "Marinated chicken, grilled veggies.", "17.99"},
		{"Smoked Brisket", "Texas-style beef brisket, pickles.", "29.99"},
		{"Grilled Veggie Platter", "Seasonal vegetables, balsamic glaze.", "15.99"},
	}},
	{"Burgers", []catalogueItem{
		{"Classic Burger", "Beef patty, lettuce, tomato, onion, sauce.", "14.99"},
		{"Bacon Cheeseburger", "Beef, bacon, cheddar, lettuce, tomato.", "16.99"},
		{"Mushroom Swiss Burger", "Beef, sautéed mushrooms, Swiss cheese.", "15.99"},
		{"Spicy Jalapeño Burger", "Beef, jalapeños, pepper jack, chipotle mayo.", "15.99"},
		{"Veggie Burger", "Plant-based patty, avocado, greens.", "13.99"},
		{"BBQ Pulled Pork Burger", "Pulled pork, BBQ sauce, slaw.", "15.49"},
	}},
	{"Salads", []catalogueItem{
		{"Caesar Salad", "Romaine, parmesan, croutons, Caesar dressing.", "10.99"},
		{"Grilled Chicken Salad", "Mixed greens, grilled chicken, vinaigrette.", "13.99"},
		{"Greek Salad", "Tomato, cucumber, feta, olives, oregano.", "11.99"},
		{"Steak Salad", "Sliced steak, arugula, blue cheese, walnuts.", "16.99"},
	}},
	{"Sides", []catalogueItem{
		{"French Fries", "Crispy golden fries.", "4.99"},
		{"Sweet Potato Fries", "Sweet potato fries, chipotle mayo.", "5.99"},
		{"Onion Rings", "Beer-battered onion rings.", "5.49"},
		{"Coleslaw", "Creamy house slaw.", "3.99"},
		{"Mac & Cheese", "Cheesy baked macaroni.", "6.99"},
	}},
	{"Cocktails", []catalogueItem{
		{"Classic Mojito", "Rum, mint, lime, soda.", "9.99"},
		{"Whiskey Sour", "Whiskey, lemon, sugar, bitters.", "10.99"},
		{"Margarita", "Tequila, lime, triple sec.", "10.99"},
		{"Espresso Martini", "Vodka, espresso, coffee liqueur.", "11.99"},
		{"Berry Smash", "Gin, berries, lemon, soda.", "10.49"},
	}},
	{"Drinks", []catalogueItem{
		{"Coca Cola", "Classic Coca Cola served chilled.", "3.99"},
		{"Fresh Lemonade", "Freshly squeezed lemon juice with mint.", "4.99"},
		{"Iced Tea", "Refreshing iced tea with lemon slice.", "3.49"},
		{"Craft Beer", "Rotating selection of local craft beers.", "6.99"},
		{"Sparkling Water", "Chilled sparkling mineral water.", "2.99"},
	}},
	{"Desserts", []catalogueItem{
		{"Chocolate Cake", "Rich chocolate layer cake with chocolate frosting.", "7.99"},
		{"Cheesecake", "New York style cheesecake with berry compote.", "8.99"},
		{"Ice Cream Sundae", "Vanilla ice cream with chocolate sauce and whipped cream.", "5.99"},
		{"Apple Pie", "Warm apple pie, cinnamon, vanilla ice cream.", "6.99"},
		{"Brownie Explosion", "Chocolate brownie, fudge, ice cream.", "7.49"},
	}},
	{"Specials", []catalogueItem{
		{"Surf & Turf", "Grilled steak and shrimp, garlic butter.", "36.99"},
		{"BBQ Sampler Platter", "Ribs, brisket, wings, fries, slaw.", "39.99"},
		{"Ultimate Burger Challenge", "Triple patty burger, fries, shake.", "24.99"},
		{"Vegan Feast", "Grilled veggies, vegan burger, salad.", "21.99"},
	}},
}

// SeedCatalogue returns fresh, unsaved models for the default menu.
func SeedCatalogue() []model.MenuCategory {
	out := make([]model.MenuCategory, 0, len(barAndGrill))
	for _, c := range barAndGrill {
		cat := model.MenuCategory{Name: c.name, Items: make([]model.MenuItem, 0, len(c.items))}
		for _, it := range c.items {
			cat.Items = append(cat.Items, model.MenuItem{
				Name:        it.name,
				Description: it.description,
				Price:       decimal.RequireFromString(it.price),
			})
		}
		out = append(out, cat)
	}
	return out
}
