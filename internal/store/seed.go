package store

// GlobalTones are the built-in tones every account can pick from. They
// are inserted once at startup if no global tones exist yet.
func GlobalTones() []Tone {
	return []Tone{
		{
			Name:          "Gentle",
			Global:        true,
			Stages:        []string{"Idea", "Getting Going", "Almost there!", "Yayyyy"},
			Greeting:      "Welcome back!! Good job checking in today!",
			UnmetBehavior: BehaviorHide,
			Deadline:      DeadlineOff,
		},
		{
			Name:          "Business (silly)",
			Global:        true,
			Stages:        []string{"Brainstorming", `"Almost Done"`, "Actually Almost Done", "Eh good enough"},
			Greeting:      "Get ready to synergize your goals in order to up-level your growth",
			UnmetBehavior: BehaviorNice,
			Deadline:      DeadlineSoft,
		},
		{
			Name:          "Serious",
			Global:        true,
			Stages:        []string{"Queued", "In Progress", "Finishing Touches", "Completed"},
			Greeting:      "Welcome to your goal tracker",
			UnmetBehavior: BehaviorNice,
			Deadline:      DeadlineHard,
		},
		{
			Name:          "Snarky",
			Global:        true,
			Stages:        []string{"You Lazy?", "Woah you started", "Not done yet?", "Oh finally???"},
			Greeting:      "Wow you actually signed in to check. Way to go/s",
			UnmetBehavior: BehaviorMean,
			Deadline:      DeadlineHard,
		},
		{
			Name:          "Boring",
			Global:        true,
			Stages:        []string{"stage 1", "stage 2", "stage 3", "stage 4"},
			Greeting:      "[insert greeting]",
			UnmetBehavior: BehaviorNice,
			Deadline:      DeadlineSoft,
		},
		{
			Name:          "Just Colors",
			Global:        true,
			Stages:        []string{"red", "yellow", "blue", "green"},
			Greeting:      "Rainbow!",
			UnmetBehavior: BehaviorNice,
			Deadline:      DeadlineSoft,
		},
	}
}
