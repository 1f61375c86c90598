package web

import (
	"fmt"

	"github.com/letsssgooo/knowledgeQuest/internal/authoring"
)

// Языки интерфейса
const (
	LocaleRU = "ru"
	LocaleEN = "en"
)

// Messages отдает тексты интерфейса на выбранном языке.
// Ключ, которого нет в выбранном языке, ищется в русском каталоге, затем возвращается как есть.
type Messages struct {
	locale string
}

// NewMessages создает каталог для locale. Неизвестный язык заменяется русским.
func NewMessages(locale string) *Messages {
	if _, ok := catalogs[locale]; !ok {
		locale = LocaleRU
	}
	return &Messages{locale: locale}
}

// Locale возвращает язык каталога.
func (m *Messages) Locale() string {
	return m.locale
}

// T возвращает текст по ключу. Аргументы подставляются через fmt.Sprintf.
func (m *Messages) T(key string, args ...interface{}) string {
	text, ok := catalogs[m.locale][key]
	if !ok {
		text, ok = catalogs[LocaleRU][key]
	}
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(text, args...)
	}
	return text
}

// Validation возвращает текст ошибки проверки черновика теста.
func (m *Messages) Validation(err *authoring.ValidationError) string {
	text := m.T("validation." + string(err.Code))
	if err.Question == 0 {
		return text
	}
	return m.T("validation.question", err.Question, text)
}

var catalogs = map[string]map[string]string{
	LocaleRU: {
		"app.title":   "Система тестирования",
		"app.tagline": "Интерактивная платформа для проверки знаний по информатике",
		"app.hero":    "Система тестирования знаний",
		"app.loading": "Загрузка...",
		"app.back":    "Назад",
		"app.cancel":  "Отмена",
		"app.minutes": "%d мин",
		"app.none":    "—",

		"nav.login":    "Войти",
		"nav.register": "Регистрация",
		"nav.logout":   "Выйти",

		"role.student": "Студент",
		"role.teacher": "Преподаватель",

		"login.title":        "Вход в систему",
		"login.subtitle":     "Введите email и пароль для входа",
		"login.email":        "Email",
		"login.password":     "Пароль",
		"login.submit":       "Войти",
		"login.no_account":   "Нет аккаунта?",
		"login.success":      "Вход выполнен успешно!",
		"login.failed":       "Ошибка входа. Проверьте данные.",
		"register.title":     "Регистрация",
		"register.subtitle":  "Создайте аккаунт для доступа к системе тестирования",
		"register.full_name": "Полное имя",
		"register.role":      "Роль",
		"register.student":   "Прохождение тестов и просмотр результатов",
		"register.teacher":   "Создание тестов и просмотр статистики",
		"register.hint":      "Минимум 6 символов",
		"register.submit":    "Зарегистрироваться",
		"register.has_acc":   "Уже есть аккаунт?",
		"register.success":   "Регистрация успешна! Добро пожаловать!",
		"register.failed":    "Ошибка регистрации. Попробуйте снова.",
		"logout.success":     "Вы вышли из системы",
		"session.expired":    "Сессия истекла, войдите снова",

		"auth.email_required":     "Введите email",
		"auth.email_invalid":      "Некорректный email",
		"auth.full_name_required": "Введите полное имя",
		"auth.password_short":     "Пароль должен содержать минимум 6 символов",
		"auth.password_required":  "Введите пароль",
		"auth.role_invalid":       "Выберите роль",

		"student.header":         "Студент: %s",
		"student.passed_count":   "Пройдено тестов",
		"student.average":        "Средний балл",
		"student.pass_rate":      "Успешность",
		"student.available":      "Доступные тесты",
		"student.my_results":     "Мои результаты",
		"student.no_tests":       "Нет доступных тестов",
		"student.no_tests_hint":  "Тесты появятся здесь, когда их создаст преподаватель",
		"student.start":          "Начать тест",
		"student.no_results":     "Нет результатов",
		"student.no_results_tip": "Пройдите тест, чтобы увидеть результаты",
		"student.completed":      "Завершено: %s",
		"student.review":         "Смотреть ошибки",
		"load.failed":            "Ошибка загрузки данных",

		"result.passed":       "Сдан",
		"result.failed":       "Не сдан",
		"result.score":        "Результат",
		"result.percentage":   "Процент",
		"result.title":        "Результаты: %s",
		"result.completed":    "Пройдено %s",
		"result.test_passed":  "Тест сдан",
		"result.test_failed":  "Тест не сдан",
		"result.summary":      "Сводка",
		"result.summary_hint": "Общая информация по тесту",
		"result.points":       "Баллы",
		"result.time":         "Время",
		"result.question":     "Вопрос %d: %s",
		"result.your_answer":  "Ваш ответ",
		"result.right_answer": "Правильный ответ",
		"result.no_answer":    "Нет ответа",
		"result.pending":      "Ожидает проверку",
		"result.correct":      "Правильно",
		"result.wrong":        "Ошибка",
		"result.pending_hint": "Текстовые ответы проверяются преподавателем вручную. Ожидайте оценку.",
		"result.earned":       "Баллы начислены: %d",
		"result.not_earned":   "Баллы не начислены",
		"result.back":         "Вернуться к курсам",
		"result.load_failed":  "Не удалось загрузить результаты теста",
		"result.auto":         "Время вышло, тест отправлен автоматически",

		"qtype.single":        "Один ответ",
		"qtype.multiple":      "Несколько ответов",
		"qtype.text":          "Текстовый ответ",
		"qtype.single_long":   "Один правильный ответ",
		"qtype.multiple_long": "Несколько правильных ответов",

		"take.progress":      "Вопрос %d из %d",
		"take.meta":          "Баллов: %d | Тип: %s",
		"take.placeholder":   "Введите ваш ответ...",
		"take.prev":          "Назад",
		"take.next":          "Далее",
		"take.finish":        "Отправить тест",
		"take.low_time":      "Внимание! Осталось мало времени!",
		"take.confirm_title": "Отправить тест?",
		"take.confirm_text":  "Вы ответили на %d из %d вопросов. После отправки изменить ответы будет невозможно.",
		"take.confirm":       "Отправить",
		"take.submitting":    "Отправка...",
		"take.sent":          "Тест отправлен на проверку!",
		"take.send_failed":   "Ошибка отправки теста",
		"take.load_failed":   "Ошибка загрузки теста",
		"take.no_questions":  "В тесте нет вопросов",
		"take.remaining":     "Осталось: %s",

		"teacher.header":        "Преподаватель: %s",
		"teacher.my_tests":      "Мои тесты",
		"teacher.my_tests_hint": "Создавайте и управляйте своими тестами",
		"teacher.create":        "Создать тест",
		"teacher.empty":         "У вас пока нет тестов",
		"teacher.empty_hint":    "Создайте свой первый тест для студентов",
		"teacher.create_first":  "Создать первый тест",
		"teacher.active":        "Активен",
		"teacher.inactive":      "Неактивен",
		"teacher.duration":      "%d минут",
		"teacher.questions":     "Вопросов: %d",
		"teacher.statistics":    "Статистика",
		"teacher.edit":          "Редактировать",
		"teacher.delete":        "Удалить",
		"teacher.load_failed":   "Ошибка загрузки тестов",
		"delete.title":          "Удалить тест?",
		"delete.text":           "Это действие нельзя отменить. Тест и все связанные с ним данные будут удалены навсегда.",
		"delete.done":           "Тест удален",
		"delete.failed":         "Ошибка удаления теста",

		"editor.create_title":    "Создание теста",
		"editor.edit_title":      "Редактирование теста",
		"editor.main":            "Основная информация",
		"editor.main_create":     "Заполните основные данные о тесте",
		"editor.main_edit":       "Обновите данные о тесте",
		"editor.title":           "Название теста *",
		"editor.title_ph":        "Введите название теста",
		"editor.description":     "Описание",
		"editor.description_ph":  "Краткое описание теста",
		"editor.duration":        "Длительность (минут)",
		"editor.active":          "Активен",
		"editor.questions":       "Вопросы",
		"editor.add_question":    "Добавить вопрос",
		"editor.no_questions":    "Нет вопросов",
		"editor.question":        "Вопрос %d",
		"editor.remove_question": "Удалить вопрос",
		"editor.text":            "Текст вопроса *",
		"editor.text_ph":         "Введите текст вопроса",
		"editor.type":            "Тип вопроса",
		"editor.apply_type":      "Сменить тип",
		"editor.points":          "Баллы",
		"editor.options":         "Варианты ответа *",
		"editor.add_option":      "Добавить вариант",
		"editor.remove_option":   "Удалить вариант",
		"editor.option_ph":       "Вариант %d",
		"editor.correct_hint":    "Отметьте правильные ответы",
		"editor.save_create":     "Сохранить тест",
		"editor.save_edit":       "Сохранить изменения",
		"editor.discard":         "Сбросить изменения",
		"editor.created":         "Тест создан успешно!",
		"editor.updated":         "Тест обновлен",
		"editor.save_failed":     "Ошибка сохранения теста",
		"editor.partial":         "Сохранено шагов: %d из %d. Остановлено на шаге: %s",
		"editor.load_failed":     "Не удалось загрузить тест",

		"step.create_test":     "создание теста",
		"step.update_test":     "изменение теста",
		"step.create_question": "создание вопроса %d",
		"step.update_question": "изменение вопроса %d",
		"step.delete_question": "удаление вопроса #%d",

		"validation.question":               "Вопрос %d: %s",
		"validation.title_required":         "Введите название теста",
		"validation.duration_invalid":       "Длительность должна быть не меньше минуты",
		"validation.no_questions":           "Добавьте хотя бы один вопрос",
		"validation.question_text_required": "введите текст вопроса",
		"validation.points_invalid":         "баллы должны быть положительными",
		"validation.too_few_options":        "заполните как минимум два варианта",
		"validation.empty_option":           "заполните все варианты ответа",
		"validation.duplicate_option":       "варианты ответа не должны повторяться",
		"validation.no_correct_answer":      "укажите правильный ответ",

		"stats.subtitle":     "Статистика прохождений",
		"stats.attempts":     "Всего попыток",
		"stats.average":      "Средний балл",
		"stats.pass_rate":    "Процент сдачи",
		"stats.range":        "Диапазон баллов",
		"stats.all":          "Все результаты",
		"stats.all_hint":     "Список всех прохождений теста студентами",
		"stats.empty":        "Нет результатов",
		"stats.empty_hint":   "Пока никто не прошел этот тест",
		"stats.export":       "Скачать CSV",
		"stats.student":      "Студент",
		"stats.completed_at": "Завершено",

		"error.not_found":      "Страница не найдена",
		"error.not_found_hint": "Запрошенная страница не существует",
		"error.home":           "На главную",
		"error.generic":        "Что-то пошло не так. Попробуйте позже.",
		"error.backend":        "Сервер недоступен. Попробуйте позже.",
		"loading.hint":         "Восстанавливаем сессию...",
	},
	LocaleEN: {
		"app.title":   "Testing system",
		"app.tagline": "Interactive platform for checking computer science knowledge",
		"app.hero":    "Knowledge testing system",
		"app.loading": "Loading...",
		"app.back":    "Back",
		"app.cancel":  "Cancel",
		"app.minutes": "%d min",

		"nav.login":    "Sign in",
		"nav.register": "Sign up",
		"nav.logout":   "Sign out",

		"role.student": "Student",
		"role.teacher": "Teacher",

		"login.title":       "Sign in",
		"login.subtitle":    "Enter your email and password",
		"login.password":    "Password",
		"login.submit":      "Sign in",
		"login.no_account":  "No account?",
		"login.success":     "Signed in successfully!",
		"login.failed":      "Sign in failed. Check your credentials.",
		"register.title":    "Sign up",
		"register.subtitle": "Create an account to access the testing system",
		"register.submit":   "Create account",
		"register.success":  "Registration successful! Welcome!",
		"register.failed":   "Registration failed. Please try again.",
		"logout.success":    "You have signed out",
		"session.expired":   "Session expired, please sign in again",

		"student.start":  "Start test",
		"result.passed":  "Passed",
		"result.failed":  "Failed",
		"take.next":      "Next",
		"take.prev":      "Back",
		"take.finish":    "Submit test",
		"take.low_time":  "Attention! Time is almost up!",
		"take.confirm":   "Submit",
		"take.sent":      "Test submitted for grading!",
		"load.failed":    "Failed to load data",
		"delete.done":    "Test deleted",
		"editor.created": "Test created!",
		"editor.updated": "Test updated",

		"error.not_found": "Page not found",
		"error.home":      "Home",
		"error.generic":   "Something went wrong. Please try again later.",
	},
}
