package viewmodel

// DifficultyOption is one start button on the main menu.
type DifficultyOption struct {
	Value string
	Label string
}

// Page holds data for the single quiz page. View picks which menu is shown.
type Page struct {
	Title     string
	Prefix    string
	ShareURL  string
	View      string
	MainMenu  MainMenu
	Game      GameFragment
	Results   ResultsFragment
	ErrorText string
}

// MainMenu holds the difficulty picker.
type MainMenu struct {
	Prefix       string
	Difficulties []DifficultyOption
}

// GameFragment holds data for the in-game view.
type GameFragment struct {
	Prefix       string
	Difficulty   string
	Mode         string
	Round        int
	Rounds       int
	Running      bool
	StartedMs    int64
	ElapsedMs    int64
	Time         string
	ImageRef     string
	Choices      ChoicesFragment
	Autocomplete []string
	Input        string
	RoundKey     string
}

// Choice is one answer button.
type Choice struct {
	Index   int
	Label   string
	Visible bool
	Enabled bool
}

// ChoicesFragment holds the answer buttons, re-rendered when a cooldown ends.
type ChoicesFragment struct {
	Prefix  string
	Choices []Choice
	Locked  bool
}

// ResultsFragment holds the end-of-game summary.
type ResultsFragment struct {
	Prefix string
	Rounds int
	Time   string
	Rate   string
}
