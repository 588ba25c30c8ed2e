package contentbank

import "github.com/SAP-F-2025/intervention-service/internal/models"

type content = models.AnalysisContent

var incorrectHints = map[models.QuestionType]string{
	models.QuestionTypePatinig:    "Not quite. Say the vowel (patinig) sound out loud, listen closely, and try again.",
	models.QuestionTypeKatinig:    "Not quite. Look at the shape of the consonant (katinig) and say its sound before choosing.",
	models.QuestionTypeMalapantig: "Almost! Clap each syllable (pantig) slowly, then put them together and try again.",
	models.QuestionTypeWord:       "That is not the word. Sound out each letter, blend the sounds, and read it again.",
	models.QuestionTypeSentence:   "Read the whole sentence again slowly and think about what it is telling you.",
	models.QuestionTypeOther:      "That is not the right answer yet. Try again!",
}

var categoryAnalyses = map[models.Category]map[Band]content{
	models.CategoryAlphabetKnowledge: {
		BandProficient: {
			Strengths: []string{
				"Names most uppercase and lowercase letters quickly and accurately.",
				"Matches letters to their most common sounds.",
			},
			Weaknesses: []string{
				"Occasionally pauses on less frequent letters such as Ñ, Q and X.",
			},
			Recommendations: []string{
				"Use timed letter-naming drills to build automaticity.",
				"Move on to blending letter sounds into syllables.",
			},
		},
		BandDeveloping: {
			Strengths: []string{
				"Recognizes the letters in their own name and other familiar letters.",
				"Identifies many uppercase letters.",
			},
			Weaknesses: []string{
				"Confuses letters with similar shapes such as b/d and p/q.",
				"Recalls lowercase letters less reliably than uppercase.",
			},
			Recommendations: []string{
				"Practice letter sorting by shape with tactile cards.",
				"Review five new letters per session with picture cues.",
			},
		},
		BandEmerging: {
			Strengths: []string{
				"Shows interest in letters and print.",
			},
			Weaknesses: []string{
				"Names few letters of the alphabet.",
				"Does not yet connect letters to their sounds.",
			},
			Recommendations: []string{
				"Sing the alphabet daily while pointing to each letter.",
				"Introduce two or three letters at a time using multisensory tracing.",
			},
		},
		BandUnscored: {
			Strengths: []string{
				"Alphabet knowledge has not been assessed yet.",
			},
			Weaknesses: []string{
				"Letter-name and letter-sound knowledge is unknown.",
			},
			Recommendations: []string{
				"Run the alphabet knowledge assessment to establish a baseline.",
			},
		},
	},
	models.CategoryPhonologicalAwareness: {
		BandProficient: {
			Strengths: []string{
				"Segments and blends syllables with ease.",
				"Identifies beginning and ending sounds in spoken words.",
			},
			Weaknesses: []string{
				"Needs support manipulating sounds in the middle of words.",
			},
			Recommendations: []string{
				"Add phoneme substitution games (change the first sound to make a new word).",
				"Connect sound games to printed syllables.",
			},
		},
		BandDeveloping: {
			Strengths: []string{
				"Claps syllables in familiar words.",
				"Recognizes rhyming pairs when they are spoken.",
			},
			Weaknesses: []string{
				"Has difficulty isolating individual sounds in a word.",
				"Struggles to produce rhymes independently.",
			},
			Recommendations: []string{
				"Practice syllable clapping and counting with picture cards.",
				"Play daily rhyme-generation and sound-isolation games.",
			},
		},
		BandEmerging: {
			Strengths: []string{
				"Listens attentively during oral language activities.",
			},
			Weaknesses: []string{
				"Does not yet hear syllable boundaries in words.",
				"Cannot yet tell whether two words rhyme.",
			},
			Recommendations: []string{
				"Start with listening games for environmental and word sounds.",
				"Use songs and chants that emphasize syllables and rhyme.",
			},
		},
		BandUnscored: {
			Strengths: []string{
				"Phonological awareness has not been assessed yet.",
			},
			Weaknesses: []string{
				"Sound awareness skills are unknown.",
			},
			Recommendations: []string{
				"Run the phonological awareness assessment to establish a baseline.",
			},
		},
	},
	models.CategoryWordRecognition: {
		BandProficient: {
			Strengths: []string{
				"Reads high-frequency words automatically.",
				"Recognizes familiar words across different texts.",
			},
			Weaknesses: []string{
				"Slows down on longer or less common words.",
			},
			Recommendations: []string{
				"Expand the sight-word list with grade-level vocabulary.",
				"Encourage wide independent reading to build exposure.",
			},
		},
		BandDeveloping: {
			Strengths: []string{
				"Reads a core set of common sight words.",
				"Uses picture cues to support word reading.",
			},
			Weaknesses: []string{
				"Confuses words that look alike.",
				"Recognition of sight words is not yet automatic.",
			},
			Recommendations: []string{
				"Use flash-card routines with spaced review of sight words.",
				"Read short decodable texts that repeat target words.",
			},
		},
		BandEmerging: {
			Strengths: []string{
				"Recognizes their own name in print.",
			},
			Weaknesses: []string{
				"Reads very few words by sight.",
				"Relies on guessing from pictures rather than print.",
			},
			Recommendations: []string{
				"Introduce a small set of high-frequency words with word walls.",
				"Practice matching spoken words to printed word cards.",
			},
		},
		BandUnscored: {
			Strengths: []string{
				"Word recognition has not been assessed yet.",
			},
			Weaknesses: []string{
				"Sight-word knowledge is unknown.",
			},
			Recommendations: []string{
				"Run the word recognition assessment to establish a baseline.",
			},
		},
	},
	models.CategoryDecoding: {
		BandProficient: {
			Strengths: []string{
				"Blends syllables to read unfamiliar words accurately.",
				"Applies letter-sound knowledge to new words.",
			},
			Weaknesses: []string{
				"Needs practice with multisyllabic words and consonant clusters.",
			},
			Recommendations: []string{
				"Practice reading multisyllabic words broken into syllables.",
				"Introduce words with consonant blends such as pr, bl and tr.",
			},
		},
		BandDeveloping: {
			Strengths: []string{
				"Decodes simple consonant-vowel syllables.",
				"Attempts to sound out new words.",
			},
			Weaknesses: []string{
				"Stops after the first syllable instead of blending the whole word.",
				"Mixes up vowel sounds while decoding.",
			},
			Recommendations: []string{
				"Use syllable blending drills (ba-ka: baka) with gradual release.",
				"Read decodable passages matched to known syllable patterns.",
			},
		},
		BandEmerging: {
			Strengths: []string{
				"Knows that letters stand for sounds.",
			},
			Weaknesses: []string{
				"Cannot yet blend sounds into syllables.",
				"Reads words letter by letter without combining them.",
			},
			Recommendations: []string{
				"Model blending of two-letter syllables with letter tiles.",
				"Practice short daily sessions of syllable building.",
			},
		},
		BandUnscored: {
			Strengths: []string{
				"Decoding has not been assessed yet.",
			},
			Weaknesses: []string{
				"Blending and sounding-out skills are unknown.",
			},
			Recommendations: []string{
				"Run the decoding assessment to establish a baseline.",
			},
		},
	},
	models.CategoryReadingComprehension: {
		BandProficient: {
			Strengths: []string{
				"Answers literal questions about a passage correctly.",
				"Retells the main events of a story in order.",
			},
			Weaknesses: []string{
				"Needs support with inferential and why questions.",
			},
			Recommendations: []string{
				"Ask prediction and inference questions during read-alouds.",
				"Introduce short graphic organizers for story structure.",
			},
		},
		BandDeveloping: {
			Strengths: []string{
				"Understands simple sentences read aloud.",
				"Recalls some details from a short passage.",
			},
			Weaknesses: []string{
				"Loses meaning when reading longer sentences independently.",
				"Has difficulty identifying the main idea.",
			},
			Recommendations: []string{
				"Reread short passages and discuss who, what and where questions.",
				"Practice sentence-level comprehension with picture matching.",
			},
		},
		BandEmerging: {
			Strengths: []string{
				"Enjoys listening to stories.",
			},
			Weaknesses: []string{
				"Cannot yet answer questions about a sentence they read.",
				"Focuses on decoding at the expense of meaning.",
			},
			Recommendations: []string{
				"Build listening comprehension through daily read-alouds.",
				"Pair every decoded sentence with a simple meaning check.",
			},
		},
		BandUnscored: {
			Strengths: []string{
				"Reading comprehension has not been assessed yet.",
			},
			Weaknesses: []string{
				"Understanding of connected text is unknown.",
			},
			Recommendations: []string{
				"Run the reading comprehension assessment to establish a baseline.",
			},
		},
	},
}

var genericAnalyses = map[Band]content{
	BandProficient: {
		Strengths:       []string{"Performs at or above the expected level in this area."},
		Weaknesses:      []string{"No significant weaknesses were identified."},
		Recommendations: []string{"Maintain skills with enrichment activities."},
	},
	BandDeveloping: {
		Strengths:       []string{"Shows partial mastery of the skills in this area."},
		Weaknesses:      []string{"Some skills in this area are not yet consistent."},
		Recommendations: []string{"Provide targeted practice on the missed items."},
	},
	BandEmerging: {
		Strengths:       []string{"Is beginning to engage with the skills in this area."},
		Weaknesses:      []string{"Most skills in this area need direct instruction."},
		Recommendations: []string{"Schedule short, frequent intervention sessions."},
	},
	BandUnscored: {
		Strengths:       []string{"This area has not been assessed yet."},
		Weaknesses:      []string{"Skill level in this area is unknown."},
		Recommendations: []string{"Complete an assessment to generate a targeted analysis."},
	},
}
