package bot

// User-facing Persian texts.
const (
	textAskContact      = "👋 سلام! برای استفاده از ربات، لطفاً شماره تماس خود را از طریق دکمه زیر ارسال کنید."
	textBtnShareContact = "📱 ارسال شماره تماس"
	textContactNotOwn   = "❌ لطفاً فقط شماره تماس خودتان را ارسال کنید."

	textWelcomeBack = "✅ هویت شما تأیید شد. خوش آمدید %s عزیز!"

	textAskDecision = "ℹ️ شماره شما در سامانه ثبت نشده است.\nآیا مایل به ثبت‌نام هستید؟"
	textBtnRegister = "✅ بله، ثبت‌نام می‌کنم"
	textBtnDecline  = "❌ خیر"
	textDeclined    = "باشه! هر زمان خواستید، با /start دوباره شروع کنید."

	textBtnBack    = "⬅️ مرحله قبل"
	textBtnCancel  = "❌ لغو"
	textBtnConfirm = "✅ تأیید و ثبت"
	textCancelled  = "❌ فرآیند لغو شد. برای شروع مجدد /start را بزنید."

	textSummaryHeader  = "📋 لطفاً اطلاعات وارد شده را بررسی کنید:"
	textSummarySkipped = "وارد نشده"

	textCommitted = "🎉 ثبت‌نام شما با موفقیت انجام شد!\n\n🔗 کد معرف شما: <code>%s</code>"
	textUpdated   = "✅ پروفایل شما با موفقیت به‌روزرسانی شد."

	textIncomplete     = "❌ اطلاعات ثبت‌نام ناقص است. لطفاً با /start دوباره شروع کنید."
	textDuplicatePhone = "❌ این شماره تماس قبلاً ثبت شده است."
	textInternalError  = "❌ خطایی رخ داد. لطفاً کمی بعد دوباره تلاش کنید."

	textMustRegister    = "⛔️ برای استفاده از ربات ابتدا باید ثبت‌نام کنید.\nبرای شروع /start را بزنید."
	textReverify        = "🔐 اعتبار ورود شما منقضی شده است.\nلطفاً برای تأیید مجدد، شماره تماس خود را ارسال کنید."
	textAccountDisabled = "⛔️ حساب کاربری شما غیرفعال شده است. برای پیگیری با پشتیبانی تماس بگیرید."

	textUnknown = "🤔 متوجه منظورتان نشدم. لطفاً از منو یا دستورات استفاده کنید."

	textReferralReward = "🎁 یک نفر با کد معرف شما ثبت‌نام کرد!\n%d تومان اعتبار دریافت کردید.\n💰 موجودی فعلی: %d تومان"

	textProfileEdit   = "✏️ ویرایش پروفایل"
	textProfileExpiry = "\n⏳ اعتبار ورود شما %d روز دیگر منقضی می‌شود."

	textCreditBalance = "💰 اعتبار فعلی شما: <b>%d تومان</b>"

	textChargeAsk     = "💳 مبلغ مورد نظر برای افزایش اعتبار را به تومان وارد کنید:\n(حداقل %d تومان)"
	textChargeInvalid = "❌ مبلغ نامعتبر است. لطفاً یک عدد بزرگ‌تر یا مساوی %d وارد کنید."
	textChargeLink    = "🔗 برای پرداخت از لینک زیر استفاده کنید:\n%s\n\nپس از پرداخت، دکمه «پرداخت کردم» را بزنید."
	textBtnPaid       = "✅ پرداخت کردم"
	textChargeDone    = "✅ پرداخت تأیید شد!\n💰 موجودی جدید: %d تومان"
	textChargeNotYet  = "⏳ پرداخت هنوز تأیید نشده است. اگر پرداخت کرده‌اید کمی صبر کنید و دوباره بزنید."
	textChargeExpired = "❌ درخواست پرداخت فعالی یافت نشد. دوباره از «افزایش اعتبار» شروع کنید."

	textMarketing = "🎁 دوستان خود را دعوت کنید و اعتبار هدیه بگیرید!\n\n🔗 لینک دعوت شما:\n%s\n\nکد معرف: <code>%s</code>"
	textSupport   = "🆘 برای ارتباط با پشتیبانی به %s پیام دهید."

	textMenuHint = "از منوی زیر استفاده کنید:"
)

// Main menu labels, also registered as command aliases.
const (
	menuProfile   = "👤 پروفایل من"
	menuCredit    = "💰 اعتبار من"
	menuCharge    = "💳 افزایش اعتبار"
	menuMarketing = "🎁 دعوت از دوستان"
	menuSupport   = "🆘 پشتیبانی"
)
