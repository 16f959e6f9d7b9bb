// Package catalog holds the built-in categories and challenge definitions
// used to populate an empty store.
package catalog

import (
	"ecoChallengeAPI/internal/types/category"
	"ecoChallengeAPI/internal/types/challenge"
)

// Keep ids stable, clients store them.
func Categories() []category.Category {
	return []category.Category{
		{ID: 1, Name: "Water Conservation"},
		{ID: 2, Name: "Energy Efficiency"},
		{ID: 3, Name: "Waste Reduction"},
		{ID: 4, Name: "Mobility"},
	}
}

func Challenges() []challenge.Challenge {
	return []challenge.Challenge{
		{
			ID:          1,
			CategoryID:  1,
			Title:       "7-Day Home Water Efficiency Challenge",
			Tagline:     "Small habits, less wasted water.",
			Description: "This challenge focuses on building simple habits that help reduce daily household water use. Many homes unknowingly waste water through leaks, long showers, or unnecessary tap use. Over the next seven days, you'll practice mindful water-saving actions that are easy to adopt and highly effective in protecting freshwater resources. The goal is to help you become more conscious of your usage and identify areas for improvement.",
			Days:        7,
			CardImage:   "/assets/challenges/water.jpg",
			DailyTasks: []challenge.Task{
				{ID: 1, Text: "Limit your shower to 5 minutes."},
				{ID: 2, Text: "Turn off the tap while brushing or shaving."},
				{ID: 3, Text: "Wash dishes using a bowl instead of running tap water."},
				{ID: 4, Text: "Record one water-saving action you completed."},
			},
			UniqueTasks: []challenge.Task{
				{ID: 1, Text: "Check faucets for small leaks or drips."},
				{ID: 2, Text: "Reuse greywater from rinsing vegetables."},
				{ID: 3, Text: "Only run full laundry loads."},
			},
		},
		{
			ID:          2,
			CategoryID:  2,
			Title:       "7-Day Low Energy Living Challenge",
			Tagline:     "Lower demand, lower bills.",
			Description: "Energy use contributes significantly to household emissions, and reducing it can be easier than expected. This challenge guides you in adopting energy-saving habits that lower electricity demand and cut costs. Even small changes like unplugging idle devices or maximizing natural light can make a noticeable difference.",
			Days:        7,
			CardImage:   "/assets/challenges/energy.jpg",
			DailyTasks: []challenge.Task{
				{ID: 1, Text: "Turn off lights when not in use."},
				{ID: 2, Text: "Unplug one unused device daily."},
				{ID: 3, Text: "Use natural daylight instead of electric lighting."},
				{ID: 4, Text: "Avoid overnight charging of electronics."},
			},
			UniqueTasks: []challenge.Task{
				{ID: 1, Text: "Reduce fan or AC usage when possible."},
				{ID: 2, Text: "Air-dry clothes instead of using a dryer."},
				{ID: 3, Text: "Spend one hour without electronic screens."},
			},
		},
		{
			ID:          3,
			CategoryID:  3,
			Title:       "14-Day Zero Waste Kitchen Challenge",
			Tagline:     "Cook more, throw away less.",
			Description: "Most household waste starts in the kitchen. Over two weeks you'll plan meals around what you already have, avoid single-use packaging and set up a simple compost routine.",
			Days:        14,
			CardImage:   "/assets/challenges/waste.jpg",
			DailyTasks: []challenge.Task{
				{ID: 1, Text: "Bring your own bag or container when shopping."},
				{ID: 2, Text: "Use leftovers before cooking something new."},
				{ID: 3, Text: "Separate organic waste from general waste."},
			},
			UniqueTasks: []challenge.Task{
				{ID: 1, Text: "Plan a full week of meals."},
				{ID: 2, Text: "Set up a compost bin or find a local collection point."},
			},
		},
		{
			ID:          4,
			CategoryID:  4,
			Title:       "7-Day Car-Free Commute Challenge",
			Tagline:     "Move under your own power.",
			Description: "Transport is one of the largest sources of personal emissions. For one week, replace car trips with walking, cycling or public transport wherever you can.",
			Days:        7,
			CardImage:   "/assets/challenges/mobility.jpg",
			DailyTasks: []challenge.Task{
				{ID: 1, Text: "Make your commute without a car."},
				{ID: 2, Text: "Walk or cycle any trip under 2 km."},
			},
			UniqueTasks: []challenge.Task{
				{ID: 1, Text: "Check your bike tyres and brakes."},
				{ID: 2, Text: "Plan a public transport route for a trip you usually drive."},
			},
		},
	}
}
