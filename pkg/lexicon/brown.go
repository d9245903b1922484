package lexicon

import "strings"

// DefaultBrown returns the built-in Brown inventory used when no Brown word
// list is configured. It covers the frequent word types of the corpus and
// every short (one and two letter) type that occurs as a real word.
func DefaultBrown() Set {
	return NewSet(strings.Fields(brownDefault)...)
}

const brownDefault = `
a i o
ad ah am an as at aw ax ay be by do eh go ha he hi ho id if in is it lo ma me
mi mr ms my no of oh ok on or ox pa pi re so to uh um up us we ye yo
ace act add age ago aid aim air all and ant any ape arc are arm art ash ask ate
awe axe bad bag ban bar bat bay bed bee beg bet bid big bin bit bow box boy bud
bug bun bus but buy cab can cap car cat cow cry cub cup cut dad day den dew did
die dig dim dip dog dot dry due dug dye ear eat egg ego end era eve eye fan far
fat fed fee few fig fin fir fit fix fly foe fog for fox fry fun fur gap gas gay
get god got gum gun gut guy had ham has hat hay hen her hid him hip his hit hog
hop hot how hue hug hut ice ill ink inn ion its jam jar jaw jet job jog joy jug
key kid kin kit lab lad lag lap law lay led leg let lid lie lip lit log lot low
mad man map mat may men met mix mob mom mud mug nag nap net new nod nor not now
nun nut oak oar odd off oil old one opt orb ore our out owe owl own pad pal pan
pat paw pay pea peg pen pet pie pig pin pit pop pot pro pub pun pup put rag ram
ran rat raw ray red rib rid rim rip rob rod rot row rub rug run rut sad sat saw
say sea see set sew she shy sin sip sir sit six ski sky sly sob son sow spy sub
sue sum sun tab tag tan tap tar tax tea ten the tie tin tip toe ton too top toy
try tub tug two use van vat vet via vow wag war was wax way web wed wet who why
wig win wit woe won woo yes yet you zoo
able about above across act actually after again against age ago air all almost
alone along already also although always among amount animal another answer any
anyone anything appear area arm army around art ask away back bad base be bear
beat beautiful became because become bed been before began begin behind being
believe below best better between beyond big bill black blood blue board body
book born both boy bring brother brought build building built business but buy
call came can car care carry case cause center century certain chance change
character charge child children church city class clear close cold college color
come common company complete concern condition control cost could country course
court cover cut dark daughter day dead deal death decide deep did different
direction do doctor does done door down draw dream dress drink drive dry during
each early earth east easy eat economic education effect eight either else end
enough enter entire even evening event ever every everything evidence exactly
example experience eye face fact fall family far father fear feel feet felt few
field fight figure fill final find fine fire first five floor follow food foot
for force form forward found four free friend from front full further future
game garden gave general get girl give given glass go god gone good got great
green ground group grow had hair half hand happen happy hard has have he head
hear heard heart heavy held help her here herself high him himself his history
hold home hope horse hospital hot hour house how however human hundred husband
idea if important in indeed industry information inside instead interest into
is it its itself job join just keep kept kind king knew know known lady land
language large last late later laugh law lay lead learn least leave left less
let letter life light like line list listen little live local long look lord
lost lot love low made main major make man many market matter may me mean meet
member men mind minute miss moment money month more morning most mother mouth
move much music must my myself name nation national natural near need never new
news next night no none nor north not nothing notice now number of off office
often oh old on once one only open or order other our out outside over own page
paper parent part party pass past pay people per perhaps period person picture
piece place plan plant play point police political poor position possible power
present president pretty problem process produce program public pull put
question quite rather reach read ready real reason receive record red remember
report rest result return right river road rock room round rule run said same
saw say school sea second see seem seen sense serve set seven several shall she
short should show side sign simple since sing single sister sit six size small
smile so social some someone something sometimes son soon sort sound south space
speak special spend spring stand star start state stay step still stood stop
story street strong student study subject such suddenly summer sun sure system
table take talk teacher tell ten than that the their them themselves then there
these they thing think third this those though thought thousand three through
time to today together told too took toward town tree true try turn twenty two
under understand until up upon us use usually value very voice wait walk wall
want war warm was watch water way we week well went were west what whatever when
where whether which while white who whole whom whose why wife will wind window
winter wish with within without woman women wonder word work world would write
wrong year yes yet you young your
`
