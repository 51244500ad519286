package classifier

// TopicEntry maps a canonical topic to the keywords that select it.
type TopicEntry struct {
	Topic    string
	Keywords []string
}

// TopicTagSet is the ordered topic table for one subject. Order matters:
// the first entry with a matching keyword wins.
type TopicTagSet struct {
	Subject string
	Topics  []TopicEntry
}

// DefaultTopic is returned when no keyword matches.
const DefaultTopic = "general"

// Subject identifiers.
const (
	SubjectMathematics   = "mathematics"
	SubjectScience       = "science"
	SubjectEnglish       = "english"
	SubjectHindi         = "hindi"
	SubjectSocialStudies = "social_studies"
	SubjectComputer      = "computer_science"
)

// subjectAliases maps what tutoring sessions send to canonical subject names.
var subjectAliases = map[string]string{
	"math":             SubjectMathematics,
	"maths":            SubjectMathematics,
	"mathematics":      SubjectMathematics,
	"गणित":             SubjectMathematics,
	"science":          SubjectScience,
	"evs":              SubjectScience,
	"physics":          SubjectScience,
	"chemistry":        SubjectScience,
	"biology":          SubjectScience,
	"विज्ञान":          SubjectScience,
	"english":          SubjectEnglish,
	"hindi":            SubjectHindi,
	"हिंदी":            SubjectHindi,
	"social_studies":   SubjectSocialStudies,
	"social_science":   SubjectSocialStudies,
	"sst":              SubjectSocialStudies,
	"history":          SubjectSocialStudies,
	"geography":        SubjectSocialStudies,
	"civics":           SubjectSocialStudies,
	"computer":         SubjectComputer,
	"computers":        SubjectComputer,
	"computer_science": SubjectComputer,
	"coding":           SubjectComputer,
}

// DefaultTagSets is the static topic configuration, in subject detection order.
// Keywords are lower-case; Devanagari keywords are matched as-is.
var DefaultTagSets = []TopicTagSet{
	{
		Subject: SubjectMathematics,
		Topics: []TopicEntry{
			{"addition", []string{"addition", "adding", "add up", "sum of", "plus", "जोड़"}},
			{"subtraction", []string{"subtraction", "subtract", "minus", "take away", "घटाना", "घटाव"}},
			{"multiplication", []string{"multiplication", "multiply", "times table", "tables", "गुणा", "पहाड़ा"}},
			{"division", []string{"division", "divide", "quotient", "remainder", "भाग"}},
			{"fractions", []string{"fraction", "numerator", "denominator", "number line", "भिन्न"}},
			{"decimals", []string{"decimal", "number", "दशमलव"}},
			{"geometry", []string{"geometry", "triangle", "circle", "angle", "rectangle", "polygon", "ज्यामिति", "त्रिभुज"}},
			{"algebra", []string{"algebra", "equation", "variable", "expression", "बीजगणित", "समीकरण"}},
			{"measurement", []string{"measurement", "length", "perimeter", "area of", "volume", "मापन"}},
			{"counting", []string{"counting", "count", "गिनती"}},
		},
	},
	{
		Subject: SubjectScience,
		Topics: []TopicEntry{
			{"water_cycle", []string{"water cycle", "evaporation", "condensation", "precipitation", "जल चक्र", "वाष्पीकरण"}},
			{"photosynthesis", []string{"photosynthesis", "chlorophyll", "प्रकाश संश्लेषण"}},
			{"plants", []string{"plant", "leaf", "leaves", "seed", "flower", "पौधे", "पौधा"}},
			{"animals", []string{"animal", "mammal", "reptile", "habitat", "जानवर", "पशु"}},
			{"human_body", []string{"human body", "digestion", "heart", "skeleton", "organ", "मानव शरीर", "पाचन"}},
			{"solar_system", []string{"solar system", "planet", "the sun", "the moon", "सौर मंडल", "ग्रह"}},
			{"states_of_matter", []string{"states of matter", "solid", "liquid", "gas", "पदार्थ"}},
			{"electricity", []string{"electricity", "electric", "circuit", "current", "बिजली", "विद्युत"}},
			{"force_and_motion", []string{"force", "motion", "gravity", "friction", "बल", "गति"}},
			{"light_and_sound", []string{"light", "sound", "reflection", "प्रकाश", "ध्वनि"}},
		},
	},
	{
		Subject: SubjectEnglish,
		Topics: []TopicEntry{
			{"grammar", []string{"grammar", "noun", "pronoun", "verb", "adjective", "adverb", "tense", "preposition"}},
			{"phonics", []string{"phonics", "alphabet", "letter sound", "abc"}},
			{"vocabulary", []string{"vocabulary", "synonym", "antonym", "meaning of"}},
			{"reading", []string{"reading", "comprehension", "story", "poem"}},
			{"writing", []string{"writing", "essay", "letter writing", "paragraph"}},
		},
	},
	{
		Subject: SubjectHindi,
		Topics: []TopicEntry{
			{"varnamala", []string{"varnamala", "वर्णमाला", "swar", "vyanjan", "स्वर", "व्यंजन"}},
			{"vyakaran", []string{"vyakaran", "व्याकरण", "sangya", "संज्ञा", "sarvanam", "सर्वनाम", "kriya", "क्रिया"}},
			{"kavita", []string{"kavita", "कविता", "poem"}},
			{"kahani", []string{"kahani", "कहानी", "story"}},
		},
	},
	{
		Subject: SubjectSocialStudies,
		Topics: []TopicEntry{
			{"freedom_struggle", []string{"freedom struggle", "independence", "gandhi", "स्वतंत्रता"}},
			{"ancient_history", []string{"ancient", "harappa", "indus valley", "mauryan", "प्राचीन"}},
			{"maps_and_globe", []string{"map", "globe", "latitude", "longitude", "मानचित्र"}},
			{"continents", []string{"continent", "ocean", "महाद्वीप", "महासागर"}},
			{"government", []string{"government", "constitution", "democracy", "parliament", "सरकार", "संविधान"}},
			{"environment", []string{"environment", "pollution", "natural resources", "पर्यावरण", "प्रदूषण"}},
		},
	},
	{
		Subject: SubjectComputer,
		Topics: []TopicEntry{
			{"programming", []string{"programming", "coding", "scratch", "python", "algorithm"}},
			{"computer_basics", []string{"computer", "keyboard", "mouse", "hardware", "software"}},
			{"internet_safety", []string{"internet", "online safety", "password", "cyber"}},
		},
	},
}
