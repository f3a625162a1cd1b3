package detect

// language holds the literal status phrases for one human language. Patterns
// are matched case-insensitively as substrings; within a language they are
// ordered longest-first at init so specific phrases win over generic ones
// ("you're online" before "online").
type language struct {
	Code    string
	Name    string
	Online  []string
	Offline []string
}

// languages covers the locales the driver app is known to ship. Order is
// stable but not significant beyond English being the common fallback.
var languages = []language{
	{
		Code: "en", Name: "English",
		Online:  []string{"online", "you're online", "accepting orders", "you are online", "go offline", "stop accepting", "available"},
		Offline: []string{"offline", "you're offline", "go online", "not accepting", "start accepting", "unavailable"},
	},
	{
		Code: "de", Name: "German",
		Online:  []string{"online", "du bist online", "bestellungen annehmen", "verfügbar", "offline gehen", "aufträge annehmen"},
		Offline: []string{"offline", "du bist offline", "online gehen", "nicht verfügbar", "aufträge starten"},
	},
	{
		Code: "ar", Name: "Arabic",
		Online:  []string{"متصل", "أنت متصل", "قبول الطلبات", "متاح", "جاهز للعمل", "إيقاف الاتصال", "قبول طلبات"},
		Offline: []string{"غير متصل", "أنت غير متصل", "الاتصال", "غير متاح", "بدء الاتصال", "ابدأ العمل"},
	},
	{
		Code: "ru", Name: "Russian",
		Online:  []string{"онлайн", "вы онлайн", "принимать заказы", "доступен", "выйти из сети", "принимаю заказы", "в сети"},
		Offline: []string{"офлайн", "вы офлайн", "выйти в сеть", "недоступен", "начать принимать", "не в сети"},
	},
	{
		Code: "fr", Name: "French",
		Online:  []string{"en ligne", "vous êtes en ligne", "accepter commandes", "disponible", "passer hors ligne"},
		Offline: []string{"hors ligne", "vous êtes hors ligne", "passer en ligne", "non disponible"},
	},
	{
		Code: "es", Name: "Spanish",
		Online:  []string{"en línea", "estás en línea", "aceptar pedidos", "disponible", "desconectarse"},
		Offline: []string{"fuera de línea", "estás desconectado", "conectarse", "no disponible"},
	},
	{
		Code: "it", Name: "Italian",
		Online:  []string{"online", "sei online", "accetta ordini", "disponibile", "vai offline"},
		Offline: []string{"offline", "sei offline", "vai online", "non disponibile"},
	},
	{
		Code: "pt", Name: "Portuguese",
		Online:  []string{"online", "você está online", "aceitar pedidos", "disponível", "ficar offline"},
		Offline: []string{"offline", "você está offline", "ficar online", "indisponível"},
	},
	{
		Code: "tr", Name: "Turkish",
		Online:  []string{"çevrimiçi", "çevrimiçisiniz", "sipariş kabul et", "müsait", "çevrimdışı ol"},
		Offline: []string{"çevrimdışı", "çevrimdışısınız", "çevrimiçi ol", "müsait değil"},
	},
	{
		Code: "hi", Name: "Hindi",
		Online:  []string{"ऑनलाइन", "आप ऑनलाइन हैं", "ऑर्डर स्वीकार करें", "उपलब्ध", "ऑफ़लाइन जाएं"},
		Offline: []string{"ऑफ़लाइन", "आप ऑफ़लाइन हैं", "ऑनलाइन जाएं", "अनुपलब्ध"},
	},
	{
		Code: "ja", Name: "Japanese",
		Online:  []string{"オンライン", "オンラインです", "注文を受け付け", "利用可能", "オフラインにする"},
		Offline: []string{"オフライン", "オフラインです", "オンラインにする", "利用不可"},
	},
	{
		Code: "zh-Hans", Name: "Chinese (Simplified)",
		Online:  []string{"在线", "您已上线", "接受订单", "可用"},
		Offline: []string{"离线", "您已下线", "上线"},
	},
	{
		Code: "zh-Hant", Name: "Chinese (Traditional)",
		Online:  []string{"線上", "您已上線", "接受訂單"},
		Offline: []string{"離線", "您已下線", "上線"},
	},
	{
		Code: "ko", Name: "Korean",
		Online:  []string{"온라인", "온라인 상태", "주문 수락"},
		Offline: []string{"오프라인", "오프라인 상태", "온라인 전환"},
	},
	{
		Code: "nl", Name: "Dutch",
		Online:  []string{"online", "je bent online", "bestellingen accepteren"},
		Offline: []string{"offline", "je bent offline", "online gaan"},
	},
	{
		Code: "pl", Name: "Polish",
		Online:  []string{"online", "jesteś online", "przyjmuj zamówienia"},
		Offline: []string{"offline", "jesteś offline", "przejdź online"},
	},
	{
		Code: "uk", Name: "Ukrainian",
		Online:  []string{"онлайн", "ви онлайн", "приймати замовлення"},
		Offline: []string{"офлайн", "ви офлайн", "вийти в мережу"},
	},
	{
		Code: "th", Name: "Thai",
		Online:  []string{"ออนไลน์", "คุณออนไลน์อยู่", "รับออเดอร์"},
		Offline: []string{"ออฟไลน์", "คุณออฟไลน์อยู่", "เปิดออนไลน์"},
	},
	{
		Code: "vi", Name: "Vietnamese",
		Online:  []string{"trực tuyến", "bạn đang trực tuyến", "nhận đơn hàng"},
		Offline: []string{"ngoại tuyến", "bạn đang ngoại tuyến", "lên mạng"},
	},
	{
		Code: "id", Name: "Indonesian",
		Online:  []string{"online", "anda online", "terima pesanan"},
		Offline: []string{"offline", "anda offline", "online sekarang"},
	},
}

// goOnlinePhrases are call-to-action labels that contain an online-colored
// substring but actually mean the driver is currently OFFLINE ("Go Online"
// is a button, "You are Online" is a status). Any of these appearing in the
// text vetoes an ONLINE pattern match.
var goOnlinePhrases = []string{
	"go online", "online gehen", "الاتصال", "выйти в сеть",
	"passer en ligne", "conectarse", "vai online", "ficar online",
	"çevrimiçi ol", "ऑनलाइन जाएं", "オンラインにする",
	"上线", "上線", "온라인 전환", "online gaan", "przejdź online",
	"вийти в мережу", "เปิดออนไลน์", "lên mạng", "online sekarang",
}

// driverAppPackages identifies the driver-partner apps whose events we
// inspect; anything else is ignored at the source.
var driverAppPackages = []string{
	"com.ubercab.eats",
	"com.ubercab.driver",
	"com.ubercab",
}
