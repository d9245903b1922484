package lexicon

// Exclusions is the domain exclusion set: fictional proper nouns, invented
// creatures, spells and potions that survive the vocabulary check because
// they collide with dictionary entries or slip through case folding.
var Exclusions = NewSet(exclusionWords...)

// ExclusionWords returns a copy of the exclusion list in declaration order.
func ExclusionWords() []string {
	out := make([]string, len(exclusionWords))
	copy(out, exclusionWords)
	return out
}

var exclusionWords = []string{
	// wizarding world characters
	"harry", "potter", "hermione", "granger", "ron", "weasley", "weasleys", "dumbledore",
	"albus", "voldemort", "snape", "severus", "hagrid", "rubeus", "malfoy",
	"draco", "lucius", "narcissa", "neville", "longbottom", "luna", "lovegood", "ginny",
	"ginevra", "sirius",
	"remus", "lupin", "pettigrew", "wormtail", "padfoot", "moony",
	"prongs", "petunia", "vernon", "dudley", "dursley", "dursleys",
	"mcgonagall", "minerva", "flitwick", "pomfrey", "filch",
	"quirrell", "lockhart", "gilderoy", "umbridge", "dolores", "cornelius",
	"scrimgeour", "kingsley", "shacklebolt", "tonks", "nymphadora", "alastor",
	"mundungus", "bellatrix", "lestrange", "rodolphus", "dobby", "kreacher",
	"winky", "hedwig", "crookshanks", "scabbers", "fawkes", "buckbeak", "witherwings",
	"aragog", "norbert", "nagini", "grawp", "firenze", "ronan", "magorian",
	"diggory", "cho", "viktor", "krum", "fleur", "delacour", "gabrielle",
	"karkaroff", "igor", "maxime", "olympe", "barty", "ludo", "slughorn",
	"trelawney", "sybill", "binns", "burbage",
	"grubbly", "ollivander", "gregorovitch", "grindelwald", "gellert", "bathilda",
	"aberforth", "ariana", "kendra", "percival", "xenophilius", "griphook",
	"bogrod", "ragnok", "dedalus", "diggle", "elphias", "hepzibah",
	"merope", "morfin", "marvolo", "peeves",
	"ravenclaw", "rowena", "godric",
	"gryffindor", "helga", "hufflepuff", "salazar", "slytherin", "crabbe", "goyle",
	"pansy", "parkinson", "zabini", "nott",
	"millicent", "bulstrode",
	"spinnet", "seamus", "finnigan",
	"parvati", "padma", "patil", "macmillan",
	"fletchley", "abbott", "zacharias",
	"goldstein",
	"creevey", "romilda", "cormac", "mclaggen", "demelza",
	"cresswell", "andromeda", "dawlish", "proudfoot", "williamson",
	"yaxley", "dolohov", "antonin", "rookwood", "augustus", "macnair", "walden",
	"mulciber", "selwyn", "rowle", "thorfinn", "greyback", "fenrir",
	"scabior", "amycus", "alecto", "carrow", "mafalda", "hopkirk",
	"cattermole", "edgecombe", "skeeter", "shunpike",
	"prang", "florean", "fortescue", "malkin", "rosmerta", "zonko",
	"honeydukes", "borgin", "burkes", "blotts", "gringotts", "ollivanders",
	// places
	"hogwarts", "hogsmeade", "azkaban", "durmstrang", "beauxbatons", "privet", "diagon",
	"knockturn", "grimmauld", "godrics", "nurmengard",
	"borgins",
	"quidditch", "owlery", "hogshead", "puddlemere",
	"wimbourne", "tutshill", "ballycastle",
	// creatures and beings
	"muggle", "muggles", "squib", "squibs", "mudblood", "mudbloods", "dementor", "dementors",
	"thestral", "thestrals", "hippogriff", "hippogriffs", "boggart", "boggarts",
	"niffler", "nifflers", "grindylow", "grindylows", "acromantula",
	"skrewt", "skrewts", "bowtruckle", "bowtruckles", "kneazle",
	"doxies", "erumpent", "flobberworm", "flobberworms", "horklump",
	"inferi", "inferius", "jarvey", "jobberknoll", "knarl", "mooncalf",
	"murtlap", "nogtail", "occamy", "porlock", "puffskein", "quintaped",
	"runespoor", "demiguise", "diricawl", "fwooper", "graphorn",
	"veelas", "animagi", "metamorphmagus",
	"parselmouth", "parseltongue", "snargaluff", "gillyweed",
	"bubotuber", "bubotubers",
	"fluxweed",
	"billywig", "horklumps", "wrackspurt", "wrackspurts",
	"nargle", "nargles", "heliopaths", "blibbering", "humdinger", "snorkack",
	// magic objects and terms
	"horcrux", "horcruxes", "portkey",
	"portkeys", "pensieve", "remembrall", "sneakoscope",
	"quaffle", "bludger", "bludgers",
	"firebolt", "cleansweep", "floo", "apparate",
	"apparated", "apparating", "disapparate", "disapparated", "disapparating",
	"splinched", "splinching", "knut", "knuts",
	"butterbeer", "firewhisky", "bertie", "botts", "chocoballs",
	"whizzbees",
	"snackboxes",
	"deluminator",
	"quibbler", "auror", "aurors", "wizengamot",
	"obliviator", "obliviators", "hitwizard", "triwizard",
	"patronuses", "occlumency", "legilimency", "occlumens", "legilimens",
	"veritaserum", "polyjuice", "amortentia", "felix", "felicis", "skele",
	"gro", "pepperup", "wiggenweld", "mandragora",
	// spells
	"accio", "aguamenti", "alohomora", "anapneo", "aparecium", "avada", "kedavra", "avis",
	"confringo", "confundo", "confundus", "crucio", "cruciatus", "descendo", "diffindo",
	"engorgio", "episkey", "erecto", "evanesco", "expecto", "patronum",
	"expelliarmus", "ferula", "incantatem", "flagrate", "furnunculus", "geminio",
	"glisseo", "homenum", "revelio", "impedimenta", "imperio", "imperius", "impervius",
	"incarcerous", "incendio", "langlock", "levicorpus", "liberacorpus",
	"locomotor", "mortis", "lumos", "meteolojinx", "recanto", "mobiliarbus",
	"mobilicorpus", "morsmordre", "muffliato", "obliviate", "oppugno",
	"orchideous", "petrificus", "totalus", "piertotum", "incantato", "protego",
	"horribilis", "totalum", "reducio", "reducto", "relashio", "rennervate",
	"reparo", "repello", "muggletum", "rictusempra", "riddikulus", "salvio", "hexia",
	"scourgify", "sectumsempra", "serpensortia", "silencio", "sonorus",
	"stupefy", "tarantallegra", "tergeo", "wingardium", "leviosa", "deprimo",
	"defodio", "expulso", "fidelius", "colloportus", "densaugeo",
}
