package waitlist

// Feature is one card in the features section.
type Feature struct {
	Icon        string // key into icons
	Title       string
	Description string
}

var features = []Feature{
	{
		Icon:        "chat",
		Title:       "Just Chat & Create",
		Description: "Tell Kallio what you want in plain English.  No complex timelines or tools, just describe your vision and watch it come to life.",
	},
	{
		Icon:        "brain",
		Title:       "Context-Aware Intelligence",
		Description: "Kallio understands your content's context, emotion, and pacing.  It knows when to cut, when to highlight, and how to keep your audience engaged.",
	},
	{
		Icon:        "trend",
		Title:       "Learns Your Style",
		Description: "The more you use Kallio, the better it gets.  It analyzes your past videos and social media to match your unique editing style.",
	},
}

// commands are example prompts shown under the hero.
var commands = []string{
	"trim the dead space in all the clips",
	"add viral story telling captions that match the vibe of the video",
	"cut out all the parts when I'm in the water",
}
