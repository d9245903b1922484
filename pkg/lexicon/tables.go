package lexicon

// Rewrite is a case-insensitive regular expression rewrite applied to raw text.
type Rewrite struct {
	Pattern     string
	Replacement string
}

// Contractions expands contracted and dialect forms. Order matters: specific
// forms must precede the generic suffix rules (won't before n't).
var Contractions = []Rewrite{
	{`\bwon't\b`, "will not"},
	{`\bcan't\b`, "can not"},
	{`\bcannot\b`, "can not"},
	{`\bshan't\b`, "shall not"},
	{`\bain't\b`, "am not"},
	{`\blet's\b`, "let us"},
	{`\by'all\b`, "you all"},
	{`\bma'am\b`, "madam"},
	{`\bo'clock\b`, "oclock"},
	{`n't\b`, " not"},
	{`'ll\b`, " will"},
	{`'re\b`, " are"},
	{`'ve\b`, " have"},
	{`'m\b`, " am"},
	{`'d\b`, " would"},
	{`\b([a-z]+)in'`, "${1}ing"},
	{`(^|\s)'em\b`, "${1}them"},
	{`(^|\s)'cause\b`, "${1}because"},
	{`(^|\s)'til\b`, "${1}until"},
	{`\bgonna\b`, "going to"},
	{`\bwanna\b`, "want to"},
	{`\bgotta\b`, "got to"},
	{`\bdunno\b`, "do not know"},
	{`\bkinda\b`, "kind of"},
	{`\bsorta\b`, "sort of"},
	{`\blemme\b`, "let me"},
	{`\bgimme\b`, "give me"},
	{`\bouta\b`, "out of"},
	{`\byeh\b`, "you"},
	{`\bya\b`, "you"},
	{`\byer\b`, "your"},
	{`\bfer\b`, "for"},
	{`\bo'\s`, "of "},
	{`\bne'er\b`, "never"},
	{`\be'er\b`, "ever"},
	{`\bo'er\b`, "over"},
	{`\bt'\s`, "the "},
	{`\bth'\s`, "the "},
}

// HyphenForms maps hyphenated spellings to their canonical single-word form.
// Keys and values are lowercase; lookups are word-boundary bounded.
var HyphenForms = map[string]string{
	"e-mail": "email", "e-mails": "emails", "e-book": "ebook", "e-books": "ebooks",
	"to-day": "today", "to-morrow": "tomorrow", "to-night": "tonight", "to-gether": "together",
	"to-wards": "towards", "to-ward": "toward",
	"co-operate": "cooperate", "co-operated": "cooperated", "co-operation": "cooperation",
	"co-operative": "cooperative", "co-ordinate": "coordinate", "co-ordinated": "coordinated",
	"co-ordination": "coordination", "co-ordinator": "coordinator", "co-exist": "coexist",
	"co-existence": "coexistence", "co-author": "coauthor", "co-worker": "coworker",
	"co-workers": "coworkers",
	"re-enter":   "reenter", "re-entered": "reentered", "re-entry": "reentry", "re-elect": "reelect",
	"re-election": "reelection", "re-examine": "reexamine", "re-establish": "reestablish",
	"pre-eminent": "preeminent", "pre-empt": "preempt", "pre-existing": "preexisting",
	"any-one": "anyone", "every-one": "everyone", "some-one": "someone",
	"any-thing": "anything", "every-thing": "everything", "some-thing": "something",
	"no-thing": "nothing", "any-body": "anybody", "every-body": "everybody",
	"some-body": "somebody", "no-body": "nobody", "any-where": "anywhere",
	"every-where": "everywhere", "some-where": "somewhere", "no-where": "nowhere",
	"any-how": "anyhow", "some-how": "somehow", "some-times": "sometimes",
	"some-what": "somewhat", "any-way": "anyway", "any-more": "anymore",
	"every-day": "everyday", "with-out": "without", "with-in": "within",
	"up-stairs": "upstairs", "down-stairs": "downstairs", "in-side": "inside",
	"out-side": "outside", "in-to": "into", "on-to": "onto", "never-the-less": "nevertheless",
	"none-the-less": "nonetheless", "what-ever": "whatever", "when-ever": "whenever",
	"where-ever": "wherever", "who-ever": "whoever", "how-ever": "however",
	"for-ever": "forever", "mean-while": "meanwhile", "there-fore": "therefore",
	"else-where": "elsewhere", "over-night": "overnight", "to-do": "todo",
	"week-end": "weekend", "week-ends": "weekends", "on-line": "online", "off-line": "offline",
	"web-site": "website", "web-sites": "websites", "web-page": "webpage",
	"base-ball": "baseball", "basket-ball": "basketball", "foot-ball": "football",
	"foot-step": "footstep", "foot-steps": "footsteps", "foot-print": "footprint",
	"foot-prints": "footprints", "foot-path": "footpath",
	"fire-place": "fireplace", "fire-light": "firelight", "fire-works": "fireworks",
	"fire-man": "fireman", "fire-wood": "firewood",
	"head-ache": "headache", "tooth-ache": "toothache", "stomach-ache": "stomachache",
	"head-master": "headmaster", "head-mistress": "headmistress", "head-quarters": "headquarters",
	"head-line": "headline", "head-light": "headlight", "head-band": "headband",
	"house-keeper": "housekeeper", "house-hold": "household", "house-wife": "housewife",
	"house-work": "housework",
	"book-case":  "bookcase", "book-shelf": "bookshelf", "book-shop": "bookshop",
	"book-store": "bookstore", "book-mark": "bookmark",
	"bed-room": "bedroom", "bath-room": "bathroom", "class-room": "classroom",
	"ball-room": "ballroom", "store-room": "storeroom", "dining-room": "diningroom",
	"work-shop": "workshop", "work-place": "workplace", "work-book": "workbook",
	"sun-light": "sunlight", "moon-light": "moonlight", "candle-light": "candlelight",
	"star-light": "starlight", "lamp-light": "lamplight", "day-light": "daylight",
	"sun-shine": "sunshine", "sun-set": "sunset", "sun-rise": "sunrise", "sun-flower": "sunflower",
	"day-break": "daybreak", "day-time": "daytime", "night-time": "nighttime",
	"mid-night": "midnight", "mid-day": "midday", "mid-way": "midway",
	"news-paper": "newspaper", "news-papers": "newspapers", "post-man": "postman",
	"police-man": "policeman", "police-men": "policemen", "gentle-man": "gentleman",
	"gentle-men": "gentlemen", "sales-man": "salesman", "chair-man": "chairman",
	"sports-man": "sportsman", "fisher-man": "fisherman", "horse-man": "horseman",
	"country-side": "countryside", "sea-side": "seaside", "hill-side": "hillside",
	"road-side": "roadside", "river-side": "riverside", "bed-side": "bedside",
	"grand-father": "grandfather", "grand-mother": "grandmother", "grand-son": "grandson",
	"grand-daughter": "granddaughter", "grand-parents": "grandparents",
	"step-mother": "stepmother", "step-father": "stepfather",
	"black-board": "blackboard", "card-board": "cardboard", "key-board": "keyboard",
	"cup-board": "cupboard", "side-board": "sideboard", "over-board": "overboard",
	"rail-way": "railway", "high-way": "highway", "door-way": "doorway", "gate-way": "gateway",
	"hall-way": "hallway", "stair-way": "stairway", "run-way": "runway", "motor-way": "motorway",
	"air-port": "airport", "air-plane": "airplane", "air-craft": "aircraft", "air-line": "airline",
	"pass-port": "passport", "pass-word": "password", "cross-word": "crossword",
	"rain-bow": "rainbow", "rain-coat": "raincoat", "rain-drop": "raindrop",
	"snow-ball": "snowball", "snow-man": "snowman", "snow-flake": "snowflake",
	"water-fall": "waterfall", "water-proof": "waterproof", "water-melon": "watermelon",
	"butter-fly": "butterfly", "grass-hopper": "grasshopper", "lady-bird": "ladybird",
	"straw-berry": "strawberry", "black-berry": "blackberry", "blue-berry": "blueberry",
	"pine-apple": "pineapple", "pop-corn": "popcorn", "pan-cake": "pancake",
	"cup-cake": "cupcake", "tea-cup": "teacup", "tea-pot": "teapot", "tea-spoon": "teaspoon",
	"table-spoon": "tablespoon", "table-cloth": "tablecloth", "arm-chair": "armchair",
	"wheel-chair": "wheelchair", "under-ground": "underground", "back-ground": "background",
	"play-ground": "playground", "fore-head": "forehead", "fore-ground": "foreground",
	"fore-cast": "forecast", "fore-ver": "forever", "eye-brow": "eyebrow",
	"eye-brows": "eyebrows", "eye-lid": "eyelid", "eye-lids": "eyelids", "eye-sight": "eyesight",
	"finger-nail": "fingernail", "finger-tips": "fingertips", "finger-print": "fingerprint",
	"hand-shake": "handshake", "hand-writing": "handwriting", "hand-bag": "handbag",
	"hand-kerchief": "handkerchief", "hand-some": "handsome", "hand-ful": "handful",
	"note-book": "notebook", "text-book": "textbook", "scrap-book": "scrapbook",
	"birth-day": "birthday", "holi-day": "holiday", "pay-day": "payday",
	"night-mare": "nightmare", "night-gown": "nightgown", "night-fall": "nightfall",
	"good-bye": "goodbye", "good-night": "goodnight", "wel-come": "welcome",
	"life-time": "lifetime", "life-style": "lifestyle", "life-boat": "lifeboat",
	"out-come": "outcome", "in-come": "income", "over-come": "overcome",
	"out-look": "outlook", "over-look": "overlook", "under-stand": "understand",
	"under-stood": "understood", "with-draw": "withdraw", "with-hold": "withhold",
	"up-set": "upset", "up-date": "update", "up-grade": "upgrade", "up-load": "upload",
	"down-load": "download", "down-town": "downtown", "down-hill": "downhill",
	"break-fast": "breakfast", "sky-scraper": "skyscraper", "sky-line": "skyline",
	"light-house": "lighthouse", "green-house": "greenhouse", "ware-house": "warehouse",
	"court-yard": "courtyard", "grave-yard": "graveyard", "church-yard": "churchyard",
	"back-yard": "backyard", "ship-yard": "shipyard", "farm-yard": "farmyard",
	"wall-paper": "wallpaper", "door-bell": "doorbell", "door-step": "doorstep",
	"door-knob": "doorknob", "door-man": "doorman", "brief-case": "briefcase",
	"suit-case": "suitcase", "stair-case": "staircase", "show-case": "showcase",
	"mean-time": "meantime", "pass-over": "passover", "hang-over": "hangover",
	"pull-over": "pullover", "left-over": "leftover", "make-up": "makeup",
	"set-up": "setup", "back-up": "backup", "check-up": "checkup", "pick-up": "pickup",
	"hold-up": "holdup", "grown-up": "grownup", "grown-ups": "grownups",
	"half-way": "halfway", "where-abouts": "whereabouts", "there-abouts": "thereabouts",
	"her-self": "herself", "him-self": "himself", "my-self": "myself", "your-self": "yourself",
	"them-selves": "themselves", "our-selves": "ourselves", "it-self": "itself",
	"per-haps": "perhaps", "be-cause": "because", "al-ready": "already",
	"al-though": "although", "al-together": "altogether", "al-ways": "always",
}

// LemmaCorrections fixes known lemmatizer artifacts.
var LemmaCorrections = map[string]string{
	"plat": "plate",
	"wa":   "be",
	"ha":   "have",
	"doe":  "do",
	"hi":   "his",
	"thi":  "this",
	"u":    "us",
	"le":   "less",
	"ve":   "have",
	"ll":   "will",
	"ca":   "can",
	"wo":   "will",
	"sha":  "shall",
	"ai":   "am",
}
