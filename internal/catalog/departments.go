package catalog

// departments maps faculty -> department code -> department name.
var departments = map[Faculty]map[string]string{
	FacultyJuniorDivision: {
		"FC": "基礎科目",
		"IC": "展開科目",
		"GC": "総合科目",
		"TC": "主題科目",
		"PF": "基礎科目(PEAK)",
		"PI": "展開科目(PEAK)",
		"PG": "総合科目(PEAK)",
		"PT": "主題科目(PEAK)",
	},
	FacultyLaw: {
		"CO": "共通科目",
		"PL": "実定法系科目",
		"BL": "基礎法学系科目",
		"PS": "政治系科目",
		"EC": "経済系科目",
		"SE": "演習科目",
	},
	FacultyMedicine: {
		"ME": "医学科",
		"IE": "健康総合科学科",
	},
	FacultyEngineering: {
		"CO": "共通科目",
		"JL": "日本語教育部門",
		"CE": "社会基盤学科",
		"AR": "建築学科",
		"UE": "都市工学科",
		"MX": "機械系",
		"ME": "機械工学科",
		"MI": "機械情報工学科",
		"AA": "航空宇宙工学科",
		"PE": "精密工学科",
		"EE": "電子・情報系",
		"AM": "応用物理系",
		"AP": "物理工学科",
		"MP": "計数工学科",
		"MA": "マテリアル工学科",
		"CH": "化学・生命系",
		"CA": "応用化学科",
		"CS": "化学システム工学科",
		"CB": "化学生命工学科",
		"SI": "システム創成学科",
		"SA": "環境・エネルギーシステムコース",
		"SB": "システムデザイン＆マネジメントコース",
		"SC": "知能社会システムコース",
	},
	FacultyLetters: {
		"HU": "人文学科",
		"XX": "専修課程以外",
	},
	FacultyScience: {
		"MA": "数学科",
		"IS": "情報科学科",
		"PH": "物理学科",
		"AS": "天文学科",
		"EP": "地球惑星物理学科",
		"EE": "地球惑星環境学科",
		"CH": "化学科",
		"BC": "生物化学科",
		"BS": "生物学科",
		"BI": "生物情報科学科",
		"CC": "理学部共通科目",
	},
	FacultyAgriculture: {
		"MC": "生命化学・工学専修",
		"MB": "応用生物学専修",
		"MF": "森林生物科学専修/森林環境資源科学専修",
		"MQ": "水圏生物科学専修",
		"MA": "動物生命システム科学専修",
		"MM": "生物素材科学専修",
		"ML": "緑地環境学専修",
		"MW": "木質構造科学専修",
		"MG": "生物・環境工学専修",
		"ME": "農業・資源経済学専修",
		"MS": "フィールド科学専修",
		"MI": "国際開発農学専修",
		"MV": "獣医学専修",
		"CC": "共通",
		"CL": "応用生命科学課程",
		"CE": "環境資源学課程",
		"CV": "獣医学専修",
	},
	FacultyEconomics: {
		"EC": "経済学",
		"ST": "統計学",
		"AS": "地域研究",
		"EH": "経済史",
		"MA": "経営学",
		"QF": "数量ファイナンス",
		"WW": "その他",
	},
	FacultyArtsAndSciences: {
		"AA": "言語共通科目",
		"BA": "言語専門科目",
		"CA": "教養学科",
		"DA": "学際科学科",
		"EA": "統合自然科学科",
		"FA": "学融合プログラム",
		"GA": "教職科目",
		"HA": "特設科目",
		"XA": "高度教養科目",
	},
	FacultyEducation: {
		"IE": "総合教育科学科",
		"BT": "基礎教育学コース",
		"SS": "教育社会科学専修",
		"SO": "比較教育社会学コース",
		"PP": "教育実践・政策学コース",
		"DS": "心身発達科学専修",
		"EP": "教育心理学コース",
		"PH": "身体教育学コース",
	},
	FacultyPharmaceutical: {
		"SH": "薬科学科／薬学科",
		"PS": "薬科学科",
		"PH": "薬学科",
	},
	GradScience: {
		"PH": "物理学専攻",
		"AS": "天文学専攻",
		"EP": "地球惑星科学専攻",
		"EE": "地球惑星環境学科",
		"CH": "化学専攻",
		"BC": "生物化学科",
		"BS": "生物科学専攻",
		"BI": "生物情報科学科",
		"CC": "理学部共通科目",
	},
	GradEducation: {
		"IE": "総合教育科学専攻",
		"AS": "学校教育高度化専攻",
		"ZZ": "その他",
	},
	GradHumanitiesSociology: {
		"GC": "基礎文化研究専攻",
		"JS": "日本文化研究専攻",
		"EA": "欧米系文化研究専攻",
		"AS": "アジア文化研究専攻",
		"SC": "社会文化研究専攻",
		"CR": "文化資源学研究専攻",
		"KS": "韓国朝鮮文化研究専攻",
		"XX": "共通科目",
	},
	GradLawPolitics: {
		"LP": "総合法政専攻",
		"LS": "法曹養成専攻",
	},
	GradEconomics: {
		"EC": "経済学研究科",
	},
	GradArtsAndSciences: {
		"LI": "言語情報科学専攻",
		"IC": "超域文化科学専攻",
		"AS": "地域文化研究専攻",
		"SI": "国際社会科学専攻",
		"LS": "広域科学専攻 生命環境科学系",
		"SS": "広域科学専攻 広域システム科学系",
		"BS": "広域科学専攻 相関基礎科学系",
		"HS": "「人間の安全保障」プログラム",
		"EU": "欧州研究プログラム",
		"GH": "グローバル共生プログラム",
		"IH": "多文化共生・統合人間学プログラム",
		"GS": "国際人材養成プログラム",
		"ES": "国際環境学プログラム",
		"GW": "グローバル・スタディーズ・イニシアティヴ国際卓越大学院",
		"WA": "先進基礎科学推進国際卓越大学院",
		"IT": "科学技術インタープリター養成プログラム",
		"IG": "日独共同大学院プログラム",
		"EE": "英語教育プログラム",
	},
	// The engineering graduate school publishes no department table.
	GradEngineering: {},
	GradAgriculture: {
		"CC": "共通",
		"AB": "生産・環境生物学",
		"AC": "応用生命化学",
		"BT": "応用生命工学",
		"FS": "森林科学",
		"AQ": "水圏生物科学",
		"AE": "農業・資源経済学",
		"BE": "生物・環境工学",
		"BM": "生物材料科学",
		"WA": "生物材料科学・木造建築コース",
		"GA": "農学国際",
		"IP": "農学国際・国際農業開発学コース",
		"ES": "生圏システム学",
		"AS": "応用動物科学",
		"VM": "獣医学",
		"MS": "副専攻",
	},
	GradMedicine: {
		"MC": "分子細胞生物学",
		"FB": "機能生物学",
		"PA": "病因・病理学",
		"RB": "生体物理医学",
		"NS": "脳神経医学",
		"SM": "社会医学",
		"IM": "内科学",
		"RE": "生殖・発達・加齢医学",
		"SS": "外科学",
		"HN": "健康科学・看護学",
		"PN": "健康科学・看護学 保健師コース",
		"NU": "健康科学・看護学 専門看護師コース",
		"PE": "健康科学・看護学 保健師教育コース",
		"MW": "健康科学・看護学 助産師教育コース",
		"IH": "国際保健学",
		"MH": "医科学",
		"PH": "公共健康医学",
		"ML": "医学共通科目",
		"GP": "医学共通科目（がんプロフェショナル養成プラン）",
		"PL": "GPLLI（リーディング大学院）",
		"LS": "生命科学技術国際卓越大学院（ライフサイエンスコース）",
		"BE": "生命科学技術国際卓越大学院（生体医工学コース）",
	},
	GradPharmaceutical: {
		"SH": "薬科学専攻／薬学専攻",
		"PS": "薬科学専攻",
		"PH": "薬学専攻",
		"WL": "生命科学技術国際卓越大学院 WINGS-LST",
	},
	GradMathematicalSciences: {
		"MA": "数理科学研究科",
	},
	GradInformationScience: {
		"CS": "コンピュータ科学",
		"MA": "数理情報学",
		"IP": "システム情報学",
		"IC": "電子情報学",
		"MX": "知能機械情報学",
		"CI": "創造情報学",
		"CO": "共通科目",
	},
	GradFrontierSciences: {
		"OC": "全学開放科目",
		"CC": "新領域創成科学研究科共通科目",
		"EC": "環境学研究系共通科目",
		"AM": "物質系専攻",
		"AE": "先端エネルギー工学専攻",
		"CS": "複雑理工学専攻",
		"IB": "先端生命科学専攻",
		"MJ": "メディカル情報生命専攻",
		"NE": "自然環境学専攻",
		"OT": "海洋技術環境学専攻",
		"ES": "環境システム学専攻",
		"HE": "人間環境学専攻",
		"SC": "社会文化環境学専攻",
		"IS": "国際協力学専攻",
		"SS": "サステイナビリティ学グローバルリーダー養成大学院プログラム",
	},
	GradInterdisciplinaryInformation: {
		"SC": "社会情報学コース",
		"CH": "文化・人間情報学コース",
		"ED": "先端表現情報学コース",
		"AC": "総合分析情報学コース",
		"IA": "アジア情報社会コース",
		"BS": "生物統計情報学コース",
		"RS": "学際情報学専攻（必修）",
		"CS": "学際情報学専攻（共通）",
		"WS": "学際情報学専攻（横断）",
	},
	GradPublicPolicy: {
		"DP": "国際公共政策学専攻",
		"MP": "公共政策学専攻",
	},
}

// DepartmentName returns the department name for code within faculty.
// The code itself is returned when no name is known.
func DepartmentName(faculty Faculty, code string) string {
	if name, ok := departments[faculty][code]; ok {
		return name
	}
	return code
}
