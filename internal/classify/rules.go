package classify

import "vibebudget/internal/core"

// Rule maps an ordered keyword list to one category. Rules live in a single
// globally ordered table: categories with more specific keywords come first,
// and the order is a deliberate tie-break because keyword sets overlap
// between categories ("abonament transport" must reach Transport before
// Subscripții sees "abonament"). Reordering the table silently changes
// classification outcomes, so the table below is versioned data, not an
// implementation detail; see TestRuleOrder.
type Rule struct {
	Category    string
	Icon        string
	Description string
	Type        core.CategoryType
	Keywords    []string
}

// Rules returns the global rule table in its fixed declaration order.
// Callers must treat the result as read-only.
func Rules() []Rule {
	return globalRules
}

var globalRules = []Rule{
	{
		Category:    "Transport",
		Icon:        "🚗",
		Description: "Transport în comun sau cheltuieli cu mijlocul personal de transport (benzină, service auto, taxi, Uber)",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"petrom", "omv", "rompetrol", "mol", "lukoil", "socar", "benzinarie",
			"metrorex", "ratb", "stb", "bilet metrou", "abonament transport", "transport", "transport for london",
			"uber", "bolt", "taxi", "clever", "freenow",
			"parcare", "parking", "easypark",
			"service auto", "vulcanizare", "spalatorie auto", "itp", "rca", "rovinieta",
			"shell", "bp", "esso", "fuel", "gas station",
		},
	},
	{
		Category:    "Cumpărături",
		Icon:        "🛍️",
		Description: "Tot ce ține de market, supermarket și cumpărături online (haine, electronice, mobilă)",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"kaufland", "lidl", "carrefour", "mega image", "mega-image", "megaimage",
			"profi", "penny", "auchan", "cora", "hypermarket", "selgros", "metro",
			"la doi pasi", "fresh", "piata", "tesco", "sainsbury", "asda", "waitrose",
			"aldi", "grocery", "supermarket", "food", "market",
			"zara", "h&m", "reserved", "pull bear", "bershka", "stradivarius",
			"mango", "c&a", "new yorker", "primark",
			"emag", "amazon", "ebay", "fashion days", "answear", "about you",
			"altex", "media galaxy", "flanco", "pcgarage", "apple store", "orange shop",
			"ikea", "jysk", "dedeman", "leroy merlin", "praktiker",
			"shopping", "mall",
		},
	},
	{
		Category:    "Locuință",
		Icon:        "🏠",
		Description: "Cheltuieli de utilități, chirii, rate imobiliare, renovări, mobilări",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"chirie", "rent", "rata", "credit imobiliar", "ipoteca",
			"intretinere", "intretinere bloc", "administrare", "asociatie",
			"enel", "electrica", "energie", "curent", "gaz", "engie", "distrigaz",
			"apa nova", "compania de apa", "canal",
			"digi", "rds", "upc", "telekom", "vodafone", "orange", "internet",
			"cablu tv", "telefon", "mobil",
			"reparatie", "instalator", "electrician", "zugravi", "amenajari", "renovare",
			"electric", "electricity", "water", "utilities", "broadband", "housing", "maintenance",
		},
	},
	{
		Category:    "Sănătate",
		Icon:        "🏥",
		Description: "Medicamente, investigații, consultații, intervenții medicale",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"catena", "help net", "sensiblu", "farmacia tei", "dona", "pharmacy",
			"farmacie", "medicamente",
			"clinica", "spital", "medic", "doctor", "policlinica", "sanomed",
			"regina maria", "medicover", "medlife", "consultatie", "consult", "cabinet medical",
			"synevo", "bioclinica", "analize", "laborator", "ecografie", "rmn", "ct", "radiografie",
			"dentist", "stomatolog", "cabinet stomatologic",
			"hospital", "medical", "health",
		},
	},
	{
		Category:    "Divertisment",
		Icon:        "🍽️",
		Description: "Restaurante, cafenele, baruri, cinema, evenimente, ieșiri în oraș",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"restaurant", "pizzerie", "trattoria", "taverna", "bistro", "pub", "bar",
			"cafenea", "cafe", "coffee", "starbucks", "costa", "mccafe",
			"cinema", "cinematograf", "bilet film", "concert", "teatru", "eveniment",
			"mcdonald", "kfc", "burger king", "pizza hut", "subway",
			"dining", "nando", "greggs",
		},
	},
	{
		Category:    "Subscripții",
		Icon:        "📺",
		Description: "Abonamente pentru streaming, software, servicii cloud, fitness",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"netflix", "hbo", "disney", "amazon prime", "spotify", "apple music",
			"youtube premium", "deezer", "tidal",
			"adobe", "microsoft 365", "office 365", "google one", "icloud",
			"dropbox", "notion", "canva", "github",
			"playstation", "xbox", "steam", "epic games",
			"worldclass", "fitness", "gym",
			"subscription", "abonament", "membership",
		},
	},
	{
		Category:    "Educație",
		Icon:        "📚",
		Description: "Școală, universitate, cărți, cursuri online, training-uri",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"scoala", "universitate", "facultate", "curs", "training",
			"carte", "librarie", "carturesti", "humanitas",
			"udemy", "coursera", "skillshare",
			"educatie", "school", "education", "tuition", "books",
		},
	},
	{
		Category:    "Venituri",
		Icon:        "💰",
		Description: "Salarii, freelance, dividende, bonusuri, venituri din diverse surse",
		Type:        core.CategoryTypeIncome,
		Keywords: []string{
			"salariu", "salary", "venit", "income", "bonus", "premiu",
			"freelance", "dividende", "dobanda", "interest",
			"cashback", "rambursare", "refund",
		},
	},
	{
		Category:    "Transfer Intern",
		Icon:        "🔄",
		Description: "Transferuri între propriile conturi (nu afectează bugetul total)",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"transfer intern", "cont propriu", "între conturi",
			"from savings", "to savings", "internal transfer",
			"сбережения", "текущий", "накопления", "в кошелек", "из eur",
			"мгновенным доступом", "from сбережения",
		},
	},
	{
		Category:    "Transferuri",
		Icon:        "💸",
		Description: "Transferuri către/de la prieteni, familie sau servicii de transfer",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"money transfer", "payment from:", "payment to:",
			"to ina", "to vadim", "bizum",
			"перевод, получатель:", "получатель:",
		},
	},
	{
		Category:    "Taxe și Impozite",
		Icon:        "🧾",
		Description: "Taxe, impozite, amenzi, penalități",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"impozit", "tax", "tva", "anaf", "fisc", "taxa",
			"amenda", "penalitate", "fine", "penalty",
		},
	},
	{
		Category:    "Cash",
		Icon:        "💵",
		Description: "Retrageri de numerar de la ATM",
		Type:        core.CategoryTypeExpense,
		Keywords: []string{
			"atm", "cash", "retragere", "withdrawal", "bancomat", "numerar",
		},
	},
}
