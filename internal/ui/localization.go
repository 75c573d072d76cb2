package ui

import (
	"sort"
	"strings"

	"fyne.io/fyne/v2/lang"
)

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Language codes
const (
	LangSystem  = "system"
	LangEnglish = "en"
	LangTurkish = "tr"
	LangRussian = "ru"
	LangPortug  = "pt"
)

// Text keys for localization
const (
	KeyAppTitle          = "app_title"
	KeyDownload          = "download"
	KeyCancel            = "cancel"
	KeySettings          = "settings"
	KeyFile              = "file"
	KeyLanguage          = "language"
	KeyDownloadDirectory = "download_directory"
	KeyBrowse            = "browse"
	KeyEnterURL          = "enter_url"
	KeyVideo             = "video"
	KeyAudio             = "audio"
	KeyQuality           = "quality"
	KeyPlaylist          = "playlist"
	KeyDarkTheme         = "dark_theme"
	KeyAutoReveal        = "auto_reveal"
	KeySave              = "save"
	KeySettingsSaved     = "settings_saved"
	KeyInvalidURL        = "invalid_url"
	KeyPleaseEnterURL    = "please_enter_url"
	KeyAlreadyRunning    = "already_running"
	KeyReady             = "ready"
	KeyCancelling        = "cancelling"
	KeyDownloadCompleted = "download_completed"
	KeyDownloadFailed    = "download_failed"
	KeySummary           = "summary"
	KeyItemsTab          = "items_tab"
	KeyHistoryTab        = "history_tab"
	KeyClearHistory      = "clear_history"
	KeyClearHistoryAsk   = "clear_history_ask"
	KeyOpen              = "open"
	KeyReveal            = "reveal"
	KeyCopyPath          = "copy_path"
	KeyPathCopied        = "path_copied"
	KeyErrorOpeningFile  = "error_opening_file"
	KeyNoHistory         = "no_history"
)

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: LangEnglish,
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language. "system" picks the OS locale when
// it is translated and English otherwise.
func (l *Localization) SetLanguage(code string) {
	if code == LangSystem {
		code = systemLanguage()
	}

	if _, exists := l.texts[code]; exists {
		l.currentLanguage = code
	}
}

func systemLanguage() string {
	locale := strings.ToLower(string(lang.SystemLocale()))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	return locale
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if text, found := l.texts[LangEnglish][key]; found {
		return text
	}

	return key
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		LangEnglish: "English",
		LangTurkish: "Türkçe",
		LangRussian: "Русский",
		LangPortug:  "Português",
	}
}

// LanguageCodes returns the translated language codes in a stable order
func (l *Localization) LanguageCodes() []string {
	codes := make([]string, 0, len(l.texts))
	for code := range l.texts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// initializeTexts initializes all text translations
func (l *Localization) initializeTexts() {
	l.texts[LangEnglish] = map[string]string{
		KeyAppTitle:          "ytmux",
		KeyDownload:          "Download",
		KeyCancel:            "Cancel",
		KeySettings:          "Settings",
		KeyFile:              "File",
		KeyLanguage:          "Language",
		KeyDownloadDirectory: "Download Directory",
		KeyBrowse:            "Browse",
		KeyEnterURL:          "Enter YouTube URL (https://youtube.com/watch?v=...)",
		KeyVideo:             "Video",
		KeyAudio:             "Audio (MP3)",
		KeyQuality:           "Quality",
		KeyPlaylist:          "Download playlist",
		KeyDarkTheme:         "Dark theme",
		KeyAutoReveal:        "Reveal file when done",
		KeySave:              "Save",
		KeySettingsSaved:     "Settings saved successfully!",
		KeyInvalidURL:        "Invalid URL",
		KeyPleaseEnterURL:    "Please enter a URL",
		KeyAlreadyRunning:    "A download is already in progress",
		KeyReady:             "Ready",
		KeyCancelling:        "Cancelling...",
		KeyDownloadCompleted: "Download completed",
		KeyDownloadFailed:    "Download failed",
		KeySummary:           "%d completed, %d skipped, %d failed",
		KeyItemsTab:          "Items",
		KeyHistoryTab:        "History",
		KeyClearHistory:      "Clear history",
		KeyClearHistoryAsk:   "Remove all entries from the download history?",
		KeyOpen:              "Open",
		KeyReveal:            "Reveal",
		KeyCopyPath:          "Copy path",
		KeyPathCopied:        "Path copied to clipboard",
		KeyErrorOpeningFile:  "Error opening file",
		KeyNoHistory:         "No downloads yet",
	}

	l.texts[LangTurkish] = map[string]string{
		KeyAppTitle:          "ytmux",
		KeyDownload:          "İndir",
		KeyCancel:            "İptal",
		KeySettings:          "Ayarlar",
		KeyFile:              "Dosya",
		KeyLanguage:          "Dil",
		KeyDownloadDirectory: "İndirme Klasörü",
		KeyBrowse:            "Gözat",
		KeyEnterURL:          "YouTube URL girin (https://youtube.com/watch?v=...)",
		KeyVideo:             "Video",
		KeyAudio:             "Ses (MP3)",
		KeyQuality:           "Kalite",
		KeyPlaylist:          "Oynatma listesini indir",
		KeyDarkTheme:         "Koyu tema",
		KeyAutoReveal:        "Bitince dosyayı göster",
		KeySave:              "Kaydet",
		KeySettingsSaved:     "Ayarlar kaydedildi!",
		KeyInvalidURL:        "Geçersiz URL",
		KeyPleaseEnterURL:    "Lütfen bir URL girin",
		KeyAlreadyRunning:    "Zaten bir indirme devam ediyor",
		KeyReady:             "Hazır",
		KeyCancelling:        "İptal ediliyor...",
		KeyDownloadCompleted: "İndirme tamamlandı",
		KeyDownloadFailed:    "İndirme başarısız",
		KeySummary:           "%d tamamlandı, %d atlandı, %d başarısız",
		KeyItemsTab:          "Öğeler",
		KeyHistoryTab:        "Geçmiş",
		KeyClearHistory:      "Geçmişi temizle",
		KeyClearHistoryAsk:   "İndirme geçmişindeki tüm kayıtlar silinsin mi?",
		KeyOpen:              "Aç",
		KeyReveal:            "Klasörde göster",
		KeyCopyPath:          "Yolu kopyala",
		KeyPathCopied:        "Yol panoya kopyalandı",
		KeyErrorOpeningFile:  "Dosya açılamadı",
		KeyNoHistory:         "Henüz indirme yok",
	}

	l.texts[LangRussian] = map[string]string{
		KeyAppTitle:          "ytmux",
		KeyDownload:          "Скачать",
		KeyCancel:            "Отмена",
		KeySettings:          "Настройки",
		KeyFile:              "Файл",
		KeyLanguage:          "Язык",
		KeyDownloadDirectory: "Папка загрузки",
		KeyBrowse:            "Обзор",
		KeyEnterURL:          "Введите URL YouTube (https://youtube.com/watch?v=...)",
		KeyVideo:             "Видео",
		KeyAudio:             "Аудио (MP3)",
		KeyQuality:           "Качество",
		KeyPlaylist:          "Скачать плейлист",
		KeyDarkTheme:         "Тёмная тема",
		KeyAutoReveal:        "Показать файл после загрузки",
		KeySave:              "Сохранить",
		KeySettingsSaved:     "Настройки успешно сохранены!",
		KeyInvalidURL:        "Неверный URL",
		KeyPleaseEnterURL:    "Пожалуйста, введите URL",
		KeyAlreadyRunning:    "Загрузка уже идёт",
		KeyReady:             "Готово к работе",
		KeyCancelling:        "Отмена...",
		KeyDownloadCompleted: "Загрузка завершена",
		KeyDownloadFailed:    "Ошибка загрузки",
		KeySummary:           "завершено: %d, пропущено: %d, с ошибкой: %d",
		KeyItemsTab:          "Элементы",
		KeyHistoryTab:        "История",
		KeyClearHistory:      "Очистить историю",
		KeyClearHistoryAsk:   "Удалить все записи из истории загрузок?",
		KeyOpen:              "Открыть",
		KeyReveal:            "Показать",
		KeyCopyPath:          "Копировать путь",
		KeyPathCopied:        "Путь скопирован",
		KeyErrorOpeningFile:  "Ошибка открытия файла",
		KeyNoHistory:         "Загрузок пока нет",
	}

	l.texts[LangPortug] = map[string]string{
		KeyAppTitle:          "ytmux",
		KeyDownload:          "Baixar",
		KeyCancel:            "Cancelar",
		KeySettings:          "Configurações",
		KeyFile:              "Arquivo",
		KeyLanguage:          "Idioma",
		KeyDownloadDirectory: "Diretório de Download",
		KeyBrowse:            "Navegar",
		KeyEnterURL:          "Digite URL do YouTube (https://youtube.com/watch?v=...)",
		KeyVideo:             "Vídeo",
		KeyAudio:             "Áudio (MP3)",
		KeyQuality:           "Qualidade",
		KeyPlaylist:          "Baixar playlist",
		KeyDarkTheme:         "Tema escuro",
		KeyAutoReveal:        "Mostrar arquivo ao concluir",
		KeySave:              "Salvar",
		KeySettingsSaved:     "Configurações salvas com sucesso!",
		KeyInvalidURL:        "URL inválida",
		KeyPleaseEnterURL:    "Por favor, digite uma URL",
		KeyAlreadyRunning:    "Um download já está em andamento",
		KeyReady:             "Pronto",
		KeyCancelling:        "Cancelando...",
		KeyDownloadCompleted: "Download concluído",
		KeyDownloadFailed:    "Falha no download",
		KeySummary:           "%d concluídos, %d ignorados, %d com falha",
		KeyItemsTab:          "Itens",
		KeyHistoryTab:        "Histórico",
		KeyClearHistory:      "Limpar histórico",
		KeyClearHistoryAsk:   "Remover todas as entradas do histórico?",
		KeyOpen:              "Abrir",
		KeyReveal:            "Mostrar",
		KeyCopyPath:          "Copiar caminho",
		KeyPathCopied:        "Caminho copiado",
		KeyErrorOpeningFile:  "Erro ao abrir arquivo",
		KeyNoHistory:         "Nenhum download ainda",
	}
}
